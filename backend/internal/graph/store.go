// Package graph persists the profile/friendship graph.
//
// Profiles are vertices labelled by (firstname, lastname); friendships are
// undirected edges between two distinct profiles. Every operation resolves
// its profile descriptors by label first and fails with
// errors.ErrProfileNotFound when a label is absent.
package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"profilegraph/backend/internal/constants"
	"profilegraph/backend/internal/state"
	"profilegraph/backend/pkg/config"
)

// Store is the public surface of the graph.
type Store interface {
	// AddProfile persists a new vertex and resolves p onto it.
	AddProfile(ctx context.Context, p *state.Profile) (*state.Profile, error)
	// GetProfile resolves p by label; no-op when p is already resolved.
	GetProfile(ctx context.Context, p *state.Profile) error
	// AddFriend creates the edge a-b unless it exists in either orientation.
	AddFriend(ctx context.Context, a, b *state.Profile) error
	// RemoveFriend deletes the edge a-b in either orientation.
	RemoveFriend(ctx context.Context, a, b *state.Profile) error
	// GetFriends lists neighbours by firstname then lastname, names only.
	GetFriends(ctx context.Context, p *state.Profile) ([]*state.Profile, error)
	// RemoveProfile deletes the vertex and every incident edge atomically.
	RemoveProfile(ctx context.Context, p *state.Profile) error
	// ModifyProfile updates one attribute of the vertex.
	ModifyProfile(ctx context.Context, p *state.Profile, field state.Field, value string) error
	// Dump lists every profile with its friends, full attributes included.
	Dump(ctx context.Context) ([]DumpEntry, error)

	Close(ctx context.Context) error
}

var (
	_ Store = (*SQLiteRepository)(nil)
	_ Store = (*Neo4jRepository)(nil)
)

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, reset bool, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case constants.BackendSQLite, "":
		return NewSQLiteRepository(ctx, SQLiteConfig{Path: cfg.DBPath, Reset: reset}, log)
	case constants.BackendNeo4j:
		return NewNeo4jRepository(ctx, Neo4jConfig{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
			Reset:    reset,
		}, log)
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Backend)
	}
}
