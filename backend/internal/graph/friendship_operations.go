package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
)

// ============================================================================
// Friendship Operations
// ============================================================================

// AddFriend merges an undirected :BEFRIEND relationship between a and b
func (r *Neo4jRepository) AddFriend(ctx context.Context, a, b *state.Profile) error {
	_, err := r.write(ctx, "add friend", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := resolveProfile(ctx, tx, a); err != nil {
			return nil, err
		}
		if err := resolveProfile(ctx, tx, b); err != nil {
			return nil, err
		}
		if a.SameIdentity(b) {
			return nil, apperrors.NewSelfFriendship(a.Firstname, a.Lastname)
		}

		// MERGE without direction matches an existing edge either way round.
		query := `
			MATCH (a:Profile {id: $a}), (b:Profile {id: $b})
			MERGE (a)-[:BEFRIEND]-(b)
		`
		_, err := tx.Run(ctx, query, map[string]any{"a": a.ID(), "b": b.ID()})
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Friendship added",
		zap.String("profile", a.Label()),
		zap.String("friend", b.Label()),
	)
	return nil
}

// RemoveFriend deletes the :BEFRIEND relationship between a and b
func (r *Neo4jRepository) RemoveFriend(ctx context.Context, a, b *state.Profile) error {
	_, err := r.write(ctx, "remove friend", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := resolveProfile(ctx, tx, a); err != nil {
			return nil, err
		}
		if err := resolveProfile(ctx, tx, b); err != nil {
			return nil, err
		}

		query := `
			MATCH (a:Profile {id: $a})-[f:BEFRIEND]-(b:Profile {id: $b})
			DELETE f
		`
		_, err := tx.Run(ctx, query, map[string]any{"a": a.ID(), "b": b.ID()})
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Friendship removed",
		zap.String("profile", a.Label()),
		zap.String("friend", b.Label()),
	)
	return nil
}

// GetFriends lists the neighbours of p, names and id only
func (r *Neo4jRepository) GetFriends(ctx context.Context, p *state.Profile) ([]*state.Profile, error) {
	res, err := r.read(ctx, "get friends", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := resolveProfile(ctx, tx, p); err != nil {
			return nil, err
		}

		query := `
			MATCH (:Profile {id: $id})-[:BEFRIEND]-(f:Profile)
			RETURN DISTINCT f.id AS id, f.firstname AS firstname, f.lastname AS lastname
			ORDER BY firstname ASC, lastname ASC
		`
		result, err := tx.Run(ctx, query, map[string]any{"id": p.ID()})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		friends := make([]*state.Profile, 0, len(records))
		for _, record := range records {
			f := &state.Profile{
				Firstname: getStringFromRecord(record, "firstname"),
				Lastname:  getStringFromRecord(record, "lastname"),
			}
			f.SetID(getInt64FromRecord(record, "id"))
			friends = append(friends, f)
		}
		return friends, nil
	})
	if err != nil {
		return nil, err
	}

	friends := res.([]*state.Profile)
	r.logger.Debug("Friends listed", zap.String("profile", p.Label()), zap.Int("count", len(friends)))
	return friends, nil
}
