package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"profilegraph/backend/internal/state"
	apperrors "profilegraph/backend/pkg/errors"
	"profilegraph/backend/pkg/logger"
)

// SQLiteRepository implements Store on a local SQLite file
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteRepository opens (creating if absent) the database file and
// ensures the schema. Any failure here is an ErrStorageInitFailed.
func NewSQLiteRepository(ctx context.Context, cfg SQLiteConfig, log *zap.Logger) (*SQLiteRepository, error) {
	log = logger.OrGet(log)

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, apperrors.NewStorageInitFailed(cfg.Path, fmt.Errorf("storage path is required"))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageInitFailed(path, fmt.Errorf("opening sqlite database: %w", err))
	}

	// Pragmas are per connection; keep exactly one.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStorageInitFailed(path, fmt.Errorf("connecting to sqlite: %w", err))
	}

	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, apperrors.NewStorageInitFailed(path, fmt.Errorf("setting pragma: %w", err))
		}
	}

	if cfg.Reset {
		for _, stmt := range allResetStatements() {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				_ = db.Close()
				return nil, apperrors.NewStorageInitFailed(path, fmt.Errorf("dropping schema: %w", err))
			}
		}
		log.Info("Tables removed", zap.String("path", path))
	}

	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, apperrors.NewStorageInitFailed(path, fmt.Errorf("creating schema: %w", err))
		}
	}

	log.Debug("Tables ready", zap.String("path", path))

	return &SQLiteRepository{db: db, path: path, logger: log}, nil
}

// Close closes the SQLite connection
func (r *SQLiteRepository) Close(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AddProfile adds a new vertex. A resolved descriptor is left untouched and
// the new id goes onto a copy.
func (r *SQLiteRepository) AddProfile(ctx context.Context, p *state.Profile) (*state.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Resolved() {
		p = p.Unresolved()
	}

	var id int64
	err := r.withTx(ctx, "add profile", func(tx *sql.Tx) error {
		var existing int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM Profiles WHERE firstname = ? AND lastname = ?`,
			p.Firstname, p.Lastname,
		).Scan(&existing)
		switch {
		case err == nil:
			return apperrors.NewProfileAlreadyExists(p.Firstname, p.Lastname)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO Profiles (firstname, lastname, phone, dob) VALUES (?, ?, ?, ?)`,
			p.Firstname, p.Lastname, nullString(p.Phone), nullString(p.DOB),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewProfileAlreadyExists(p.Firstname, p.Lastname)
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	p.SetID(id)
	r.logger.Info("Profile created",
		zap.Int64("id", id),
		zap.String("firstname", p.Firstname),
		zap.String("lastname", p.Lastname),
	)
	return p, nil
}

// GetProfile resolves p by its (firstname, lastname) label
func (r *SQLiteRepository) GetProfile(ctx context.Context, p *state.Profile) error {
	if err := r.resolve(ctx, r.db, p); err != nil {
		return r.wrap("get profile", err)
	}
	return nil
}

// AddFriend adds an edge between a and b
func (r *SQLiteRepository) AddFriend(ctx context.Context, a, b *state.Profile) error {
	var created bool
	err := r.withTx(ctx, "add friend", func(tx *sql.Tx) error {
		if err := r.resolvePair(ctx, tx, a, b); err != nil {
			return err
		}
		if a.SameIdentity(b) {
			return apperrors.NewSelfFriendship(a.Firstname, a.Lastname)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO Befriend (id_f1, id_f2)
			SELECT ?, ?
			WHERE NOT EXISTS (
				SELECT 1 FROM Befriend
				WHERE (id_f1 = ? AND id_f2 = ?) OR (id_f1 = ? AND id_f2 = ?)
			)`,
			a.ID(), b.ID(), a.ID(), b.ID(), b.ID(), a.ID(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}
		n, err := res.RowsAffected()
		created = n > 0
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Friendship added",
		zap.String("profile", a.Label()),
		zap.String("friend", b.Label()),
		zap.Bool("created", created),
	)
	return nil
}

// RemoveFriend removes the edge between a and b, whatever its orientation
func (r *SQLiteRepository) RemoveFriend(ctx context.Context, a, b *state.Profile) error {
	err := r.withTx(ctx, "remove friend", func(tx *sql.Tx) error {
		if err := r.resolvePair(ctx, tx, a, b); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM Befriend
			WHERE (id_f1 = ? AND id_f2 = ?) OR (id_f1 = ? AND id_f2 = ?)`,
			a.ID(), b.ID(), b.ID(), a.ID(),
		)
		return err
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

// GetFriends returns the neighbours of p ordered by firstname, lastname
func (r *SQLiteRepository) GetFriends(ctx context.Context, p *state.Profile) ([]*state.Profile, error) {
	if err := r.resolve(ctx, r.db, p); err != nil {
		return nil, r.wrap("get friends", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.firstname, p.lastname
		FROM Befriend b
		JOIN Profiles p
		  ON (b.id_f1 = ? AND p.id = b.id_f2)
		  OR (b.id_f2 = ? AND p.id = b.id_f1)
		ORDER BY p.firstname ASC, p.lastname ASC`,
		p.ID(), p.ID(),
	)
	if err != nil {
		return nil, r.wrap("get friends", err)
	}
	defer rows.Close()

	friends := make([]*state.Profile, 0)
	for rows.Next() {
		var id int64
		var firstname, lastname string
		if err := rows.Scan(&id, &firstname, &lastname); err != nil {
			return nil, r.wrap("get friends", err)
		}
		friend := &state.Profile{Firstname: firstname, Lastname: lastname}
		friend.SetID(id)
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("get friends", err)
	}

	r.logger.Debug("Friends listed", zap.String("profile", p.Label()), zap.Int("count", len(friends)))
	return friends, nil
}

// RemoveProfile removes the vertex and cascades to its edges in one transaction
func (r *SQLiteRepository) RemoveProfile(ctx context.Context, p *state.Profile) error {
	var edges int64
	err := r.withTx(ctx, "remove profile", func(tx *sql.Tx) error {
		if err := r.resolve(ctx, tx, p); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM Befriend WHERE id_f1 = ? OR id_f2 = ?`, p.ID(), p.ID())
		if err != nil {
			return err
		}
		if edges, err = res.RowsAffected(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM Profiles WHERE id = ?`, p.ID())
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Profile removed",
		zap.Int64("id", p.ID()),
		zap.String("profile", p.Label()),
		zap.Int64("friendships_removed", edges),
	)
	return nil
}

// ModifyProfile updates one column of the vertex. Renaming onto an existing
// label fails with ErrProfileAlreadyExists.
func (r *SQLiteRepository) ModifyProfile(ctx context.Context, p *state.Profile, field state.Field, value string) error {
	column, err := columnFor(field)
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

	err = r.withTx(ctx, "modify profile", func(tx *sql.Tx) error {
		if err := r.resolve(ctx, tx, p); err != nil {
			return err
		}

		if field.IsName() {
			var other int64
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM Profiles WHERE firstname = ? AND lastname = ? AND id <> ?`,
				firstname, lastname, p.ID(),
			).Scan(&other)
			switch {
			case err == nil:
				return apperrors.NewProfileAlreadyExists(firstname, lastname)
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		// column comes from a closed whitelist
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE Profiles SET %s = ? WHERE id = ?`, column), value, p.ID())
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewProfileAlreadyExists(firstname, lastname)
			}
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// p was resolved against a row removed since
			return apperrors.NewProfileNotFound(p.Firstname, p.Lastname)
		}
		return nil
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

// Dump returns every profile with its friends
func (r *SQLiteRepository) Dump(ctx context.Context) ([]DumpEntry, error) {
	var entries []DumpEntry
	err := r.withTx(ctx, "dump", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, firstname, lastname, phone, dob
			FROM Profiles
			ORDER BY firstname ASC, lastname ASC`)
		if err != nil {
			return err
		}
		profiles, err := scanProfiles(rows, nil)
		if err != nil {
			return err
		}

		rows, err = tx.QueryContext(ctx, `
			SELECT b.id_f1, p.id, p.firstname, p.lastname, p.phone, p.dob
			FROM Befriend b JOIN Profiles p ON p.id = b.id_f2
			UNION ALL
			SELECT b.id_f2, p.id, p.firstname, p.lastname, p.phone, p.dob
			FROM Befriend b JOIN Profiles p ON p.id = b.id_f1
			ORDER BY 3 ASC, 4 ASC`)
		if err != nil {
			return err
		}
		friendsOf := make(map[int64][]*state.Profile)
		if _, err := scanProfiles(rows, friendsOf); err != nil {
			return err
		}

		entries = make([]DumpEntry, 0, len(profiles))
		for _, p := range profiles {
			friends := friendsOf[p.ID()]
			if friends == nil {
				friends = make([]*state.Profile, 0)
			}
			entries = append(entries, DumpEntry{Profile: p, Friends: friends})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Dump produced", zap.Int("profiles", len(entries)))
	return entries, nil
}

// Helper functions

// resolve fills id, phone and dob of p unless it is already resolved.
func (r *SQLiteRepository) resolve(ctx context.Context, q queryer, p *state.Profile) error {
	if p.Resolved() {
		return nil
	}

	var id int64
	var phone, dob sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, phone, dob FROM Profiles WHERE firstname = ? AND lastname = ?`,
		p.Firstname, p.Lastname,
	).Scan(&id, &phone, &dob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewProfileNotFound(p.Firstname, p.Lastname)
		}
		return err
	}

	p.SetID(id)
	p.Phone = stringPtr(phone)
	p.DOB = stringPtr(dob)
	return nil
}

func (r *SQLiteRepository) resolvePair(ctx context.Context, q queryer, a, b *state.Profile) error {
	if err := r.resolve(ctx, q, a); err != nil {
		return err
	}
	return r.resolve(ctx, q, b)
}

// withTx runs fn in a transaction, committing on success.
func (r *SQLiteRepository) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.wrap(operation, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return r.wrap(operation, err)
	}
	if err := tx.Commit(); err != nil {
		return r.wrap(operation, err)
	}
	return nil
}

// wrap passes typed errors through and turns anything else into ErrGraphQueryFailed.
func (r *SQLiteRepository) wrap(operation string, err error) error {
	if apperrors.IsUserError(err) {
		r.logger.Debug("Graph operation rejected", zap.String("operation", operation), zap.Error(err))
		return err
	}
	r.logger.Error("Graph operation failed", zap.String("operation", operation), zap.Error(err))
	return apperrors.NewGraphQueryFailed(operation, err)
}

// scanProfiles reads (id, firstname, lastname, phone, dob) rows. When
// friendsOf is non-nil each row carries a leading owner id and is grouped
// under it instead.
func scanProfiles(rows *sql.Rows, friendsOf map[int64][]*state.Profile) ([]*state.Profile, error) {
	defer rows.Close()

	var profiles []*state.Profile
	for rows.Next() {
		var owner, id int64
		var firstname, lastname string
		var phone, dob sql.NullString

		dest := []any{&id, &firstname, &lastname, &phone, &dob}
		if friendsOf != nil {
			dest = append([]any{&owner}, dest...)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		p := &state.Profile{
			Firstname: firstname,
			Lastname:  lastname,
			Phone:     stringPtr(phone),
			DOB:       stringPtr(dob),
		}
		p.SetID(id)

		if friendsOf != nil {
			friendsOf[owner] = append(friendsOf[owner], p)
		} else {
			profiles = append(profiles, p)
		}
	}
	return profiles, rows.Err()
}

func columnFor(field state.Field) (string, error) {
	switch field {
	case state.FieldFirstname:
		return "firstname", nil
	case state.FieldLastname:
		return "lastname", nil
	case state.FieldPhone:
		return "phone", nil
	case state.FieldDOB:
		return "dob", nil
	}
	return "", apperrors.NewUnsupportedField(string(field))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
