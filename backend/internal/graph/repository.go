package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "profilegraph/backend/pkg/errors"
	"profilegraph/backend/pkg/logger"
)

// Neo4jRepository implements Store on a Neo4j database. Profiles are
// :Profile nodes, friendships are :BEFRIEND relationships matched without
// direction.
type Neo4jRepository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

var neo4jConstraints = []string{
	"CREATE CONSTRAINT profile_label_unique IF NOT EXISTS FOR (p:Profile) REQUIRE (p.firstname, p.lastname) IS UNIQUE",
	"CREATE CONSTRAINT profile_id_unique IF NOT EXISTS FOR (p:Profile) REQUIRE p.id IS UNIQUE",
}

// NewNeo4jRepository connects to Neo4j and ensures the constraints
func NewNeo4jRepository(ctx context.Context, cfg Neo4jConfig, log *zap.Logger) (*Neo4jRepository, error) {
	log = logger.OrGet(log)

	if strings.TrimSpace(cfg.URI) == "" {
		return nil, apperrors.NewStorageInitFailed(cfg.URI, fmt.Errorf("neo4j uri is required"))
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, apperrors.NewStorageInitFailed(cfg.URI, fmt.Errorf("creating neo4j driver: %w", err))
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStorageInitFailed(cfg.URI, fmt.Errorf("connecting to neo4j: %w", err))
	}

	r := &Neo4jRepository{driver: driver, database: cfg.Database, logger: log}

	if cfg.Reset {
		if err := r.reset(ctx); err != nil {
			_ = driver.Close(ctx)
			return nil, apperrors.NewStorageInitFailed(cfg.URI, err)
		}
		log.Info("Graph cleared", zap.String("uri", cfg.URI))
	}

	if err := r.ensureConstraints(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewStorageInitFailed(cfg.URI, err)
	}

	log.Info("Connected to Neo4j", zap.String("uri", cfg.URI))
	return r, nil
}

// Close closes the Neo4j driver connection
func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func (r *Neo4jRepository) reset(ctx context.Context) error {
	_, err := r.write(ctx, "reset", func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "MATCH (n) WHERE n:Profile OR n:Sequence DETACH DELETE n", nil)
		return nil, err
	})
	return err
}

func (r *Neo4jRepository) ensureConstraints(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, c := range neo4jConstraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("creating constraint: %w", err)
		}
	}
	return nil
}

func (r *Neo4jRepository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: r.database,
	})
}

// write runs work in a managed write transaction, retried by the driver on
// transient failures.
func (r *Neo4jRepository) write(ctx context.Context, operation string, work neo4j.ManagedTransactionWork) (any, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		return nil, r.wrap(operation, err)
	}
	return res, nil
}

func (r *Neo4jRepository) read(ctx context.Context, operation string, work neo4j.ManagedTransactionWork) (any, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	res, err := session.ExecuteRead(ctx, work)
	if err != nil {
		return nil, r.wrap(operation, err)
	}
	return res, nil
}

func (r *Neo4jRepository) wrap(operation string, err error) error {
	if apperrors.IsUserError(err) {
		r.logger.Debug("Graph operation rejected", zap.String("operation", operation), zap.Error(err))
		return err
	}
	r.logger.Error("Graph operation failed", zap.String("operation", operation), zap.Error(err))
	return apperrors.NewGraphQueryFailed(operation, err)
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return neoErr.Code == "Neo.ClientError.Schema.ConstraintValidationFailed"
	}
	return false
}
