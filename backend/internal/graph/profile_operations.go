package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

// ============================================================================
// Profile Operations
// ============================================================================

// AddProfile creates a :Profile node with the next sequence id. A resolved
// descriptor is left untouched and the new id goes onto a copy.
func (r *Neo4jRepository) AddProfile(ctx context.Context, p *state.Profile) (*state.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Resolved() {
		p = p.Unresolved()
	}

	res, err := r.write(ctx, "add profile", func(tx neo4j.ManagedTransaction) (any, error) {
		exists, err := profileExists(ctx, tx, p.Firstname, p.Lastname, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewProfileAlreadyExists(p.Firstname, p.Lastname)
		}

		query := `
			MERGE (s:Sequence {name: 'profile'})
			ON CREATE SET s.value = 0
			SET s.value = s.value + 1
			WITH s.value AS id
			CREATE (p:Profile {
				id: id,
				firstname: $firstname,
				lastname: $lastname,
				phone: $phone,
				dob: $dob
			})
			RETURN p.id AS id
		`
		result, err := tx.Run(ctx, query, map[string]any{
			"firstname": p.Firstname,
			"lastname":  p.Lastname,
			"phone":     optionalParam(p.Phone),
			"dob":       optionalParam(p.DOB),
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			if isConstraintViolation(err) {
				return nil, apperrors.NewProfileAlreadyExists(p.Firstname, p.Lastname)
			}
			return nil, err
		}
		return getInt64FromRecord(record, "id"), nil
	})
	if err != nil {
		return nil, err
	}

	p.SetID(res.(int64))
	r.logger.Info("Profile created",
		zap.Int64("id", p.ID()),
		zap.String("firstname", p.Firstname),
		zap.String("lastname", p.Lastname),
	)
	return p, nil
}

// GetProfile resolves p by label
func (r *Neo4jRepository) GetProfile(ctx context.Context, p *state.Profile) error {
	if p.Resolved() {
		return nil
	}
	_, err := r.read(ctx, "get profile", func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, resolveProfile(ctx, tx, p)
	})
	return err
}

// RemoveProfile deletes the node together with its relationships
func (r *Neo4jRepository) RemoveProfile(ctx context.Context, p *state.Profile) error {
	res, err := r.write(ctx, "remove profile", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := resolveProfile(ctx, tx, p); err != nil {
			return nil, err
		}
		query := `
			MATCH (p:Profile {id: $id})
			OPTIONAL MATCH (p)-[f:BEFRIEND]-()
			WITH p, count(f) AS friendships
			DETACH DELETE p
			RETURN friendships
		`
		result, err := tx.Run(ctx, query, map[string]any{"id": p.ID()})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64FromRecord(record, "friendships"), nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Profile removed",
		zap.Int64("id", p.ID()),
		zap.String("profile", p.Label()),
		zap.Int64("friendships_removed", res.(int64)),
	)
	return nil
}

// ModifyProfile sets one property of the node
func (r *Neo4jRepository) ModifyProfile(ctx context.Context, p *state.Profile, field state.Field, value string) error {
	property, err := columnFor(field)
	if err != nil {
		return err
	}
	if err := state.ValidateFieldValue(field, value); err != nil {
		return err
	}
	value = field.NormalizeValue(value)

	firstname, lastname := p.Firstname, p.Lastname
	switch field {
	case state.FieldFirstname:
		firstname = value
	case state.FieldLastname:
		lastname = value
	}

	_, err = r.write(ctx, "modify profile", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := resolveProfile(ctx, tx, p); err != nil {
			return nil, err
		}

		if field.IsName() {
			taken, err := profileExists(ctx, tx, firstname, lastname, p.ID())
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.NewProfileAlreadyExists(firstname, lastname)
			}
		}

		// property comes from a closed whitelist
		query := fmt.Sprintf(`MATCH (p:Profile {id: $id}) SET p.%s = $value RETURN p.id AS id`, property)
		result, err := tx.Run(ctx, query, map[string]any{"id": p.ID(), "value": value})
		if err == nil && !result.Next(ctx) {
			err = result.Err()
			if err == nil {
				// p was resolved against a node removed since
				return nil, apperrors.NewProfileNotFound(p.Firstname, p.Lastname)
			}
		}
		if err != nil {
			if isConstraintViolation(err) {
				return nil, apperrors.NewProfileAlreadyExists(firstname, lastname)
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	p.Apply(field, value)
	r.logger.Info("Profile modified",
		zap.Int64("id", p.ID()),
		zap.String("field", string(field)),
	)
	return nil
}

// Dump returns every profile with its friends in one query
func (r *Neo4jRepository) Dump(ctx context.Context) ([]DumpEntry, error) {
	res, err := r.read(ctx, "dump", func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Profile)
			OPTIONAL MATCH (p)-[:BEFRIEND]-(f:Profile)
			WITH p, f
			ORDER BY f.firstname ASC, f.lastname ASC
			WITH p, collect(f {.id, .firstname, .lastname, .phone, .dob}) AS friends
			RETURN p.id AS id, p.firstname AS firstname, p.lastname AS lastname,
			       p.phone AS phone, p.dob AS dob, friends
			ORDER BY firstname ASC, lastname ASC
		`
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]DumpEntry, 0, len(records))
		for _, record := range records {
			p := &state.Profile{
				Firstname: getStringFromRecord(record, "firstname"),
				Lastname:  getStringFromRecord(record, "lastname"),
				Phone:     getOptionalStringFromRecord(record, "phone"),
				DOB:       getOptionalStringFromRecord(record, "dob"),
			}
			p.SetID(getInt64FromRecord(record, "id"))

			friends := make([]*state.Profile, 0)
			for _, m := range getMapSliceFromRecord(record, "friends") {
				if f := profileFromMap(m); f != nil {
					friends = append(friends, f)
				}
			}
			entries = append(entries, DumpEntry{Profile: p, Friends: friends})
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	entries := res.([]DumpEntry)
	r.logger.Debug("Dump produced", zap.Int("profiles", len(entries)))
	return entries, nil
}

// resolveProfile fills id, phone and dob of p unless already resolved.
func resolveProfile(ctx context.Context, tx neo4j.ManagedTransaction, p *state.Profile) error {
	if p.Resolved() {
		return nil
	}

	query := `
		MATCH (p:Profile {firstname: $firstname, lastname: $lastname})
		RETURN p.id AS id, p.phone AS phone, p.dob AS dob
	`
	result, err := tx.Run(ctx, query, map[string]any{
		"firstname": p.Firstname,
		"lastname":  p.Lastname,
	})
	if err != nil {
		return err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return err
		}
		return apperrors.NewProfileNotFound(p.Firstname, p.Lastname)
	}

	record := result.Record()
	p.SetID(getInt64FromRecord(record, "id"))
	p.Phone = getOptionalStringFromRecord(record, "phone")
	p.DOB = getOptionalStringFromRecord(record, "dob")
	return nil
}

// profileExists reports whether the label is held by a node other than exceptID.
func profileExists(ctx context.Context, tx neo4j.ManagedTransaction, firstname, lastname string, exceptID int64) (bool, error) {
	query := `
		MATCH (p:Profile {firstname: $firstname, lastname: $lastname})
		WHERE p.id <> $exceptID
		RETURN count(p) AS n
	`
	result, err := tx.Run(ctx, query, map[string]any{
		"firstname": firstname,
		"lastname":  lastname,
		"exceptID":  exceptID,
	})
	if err != nil {
		return false, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return false, err
	}
	return getInt64FromRecord(record, "n") > 0, nil
}
