package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"profilegraph/backend/internal/state"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	return toInt64(val)
}

func getOptionalStringFromRecord(record *neo4j.Record, key string) *string {
	val, ok := record.Get(key)
	if !ok {
		return nil
	}
	return toOptionalString(val)
}

func getMapSliceFromRecord(record *neo4j.Record, key string) []map[string]any {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []map[string]any{}
	}
	slice, ok := val.([]any)
	if !ok {
		return []map[string]any{}
	}
	result := make([]map[string]any, 0, len(slice))
	for _, v := range slice {
		if m, ok := v.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}

func getStringFromMap(m map[string]any, key string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func toInt64(val any) int64 {
	switch i := val.(type) {
	case int64:
		return i
	case int:
		return int64(i)
	}
	return 0
}

func toOptionalString(val any) *string {
	if str, ok := val.(string); ok {
		return &str
	}
	return nil
}

// profileFromMap builds a resolved profile from a {id, firstname, lastname,
// phone, dob} projection. Returns nil when the map has no id, which is what
// OPTIONAL MATCH yields for a missing friend.
func profileFromMap(m map[string]any) *state.Profile {
	id := toInt64(m["id"])
	if id <= 0 {
		return nil
	}
	p := &state.Profile{
		Firstname: getStringFromMap(m, "firstname"),
		Lastname:  getStringFromMap(m, "lastname"),
		Phone:     toOptionalString(m["phone"]),
		DOB:       toOptionalString(m["dob"]),
	}
	p.SetID(id)
	return p
}

// optionalParam turns a nil attribute into a Cypher null.
func optionalParam(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
