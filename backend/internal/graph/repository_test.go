package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "profilegraph/backend/pkg/errors"
)

// The Neo4j tests require a running instance and wipe its Profile nodes.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables.
func neo4jTestConfig(t *testing.T) Neo4jConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	return Neo4jConfig{
		URI:      uri,
		Username: user,
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
		Reset:    true,
	}
}

func TestNeo4jRepository_Contract(t *testing.T) {
	cfg := neo4jTestConfig(t)

	runStoreContract(t, func(t *testing.T) Store {
		repo, err := NewNeo4jRepository(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close(context.Background()) })
		return repo
	})
}

func TestNeo4jRepository_InitFailure(t *testing.T) {
	_, err := NewNeo4jRepository(context.Background(), Neo4jConfig{}, zap.NewNop())
	var initErr *apperrors.ErrStorageInitFailed
	require.ErrorAs(t, err, &initErr)

	_, err = NewNeo4jRepository(context.Background(), Neo4jConfig{URI: "not a uri"}, zap.NewNop())
	assert.ErrorAs(t, err, &initErr)
}
