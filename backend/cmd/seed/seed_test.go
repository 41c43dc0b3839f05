package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
)

func newTestStore(t *testing.T) graph.Store {
	t.Helper()
	repo, err := graph.NewSQLiteRepository(context.Background(), graph.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "profiles.sqlite"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo
}

func TestSeed_DefaultFixtureIsRerunnable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	res, err := seed(ctx, store, defaultFixture(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{ProfilesCreated: 4, Friendships: 3}, res)

	res, err = seed(ctx, store, defaultFixture(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{ProfilesSkipped: 4, Friendships: 3}, res)

	friends, err := store.GetFriends(ctx, state.NewProfile("jane", "doe"))
	require.NoError(t, err)
	assert.Len(t, friends, 2)
}

func TestLoadFixture(t *testing.T) {
	f, err := loadFixture(strings.NewReader(`{
		"profiles": [{"firstname": "a", "lastname": "b", "phone": "1"}],
		"friendships": [{"a": {"firstname": "a", "lastname": "b"}, "b": {"firstname": "c", "lastname": "d"}}]
	}`))
	require.NoError(t, err)
	require.Len(t, f.Profiles, 1)
	assert.Equal(t, "1", *f.Profiles[0].Phone)
	assert.Nil(t, f.Profiles[0].DOB)
	assert.Equal(t, "c", f.Friendships[0].B.Firstname)

	_, err = loadFixture(strings.NewReader(`{"people": []}`))
	assert.Error(t, err)
}

func TestSeed_UnknownFriendFails(t *testing.T) {
	store := newTestStore(t)

	_, err := seed(context.Background(), store, &Fixture{
		Profiles:    []FixtureProfile{{Firstname: "a", Lastname: "b"}},
		Friendships: []FixtureFriendship{{A: FixtureName{"a", "b"}, B: FixtureName{"x", "y"}}},
	}, zap.NewNop())
	assert.ErrorContains(t, err, "not registered")
}
