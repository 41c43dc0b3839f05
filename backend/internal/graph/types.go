package graph

import "profilegraph/backend/internal/state"

// DumpEntry is one profile with its friends, all with full attributes
type DumpEntry struct {
	Profile *state.Profile   `json:"profile"`
	Friends []*state.Profile `json:"friends"`
}

// SQLiteConfig holds SQLite backend configuration
type SQLiteConfig struct {
	Path string
	// Reset drops and recreates both relations. Destructive.
	Reset bool
}

// Neo4jConfig holds Neo4j connection configuration
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
	// Reset deletes every profile and friendship. Destructive.
	Reset bool
}
