// Package sqlite is the single-file storage driver for self-hosted
// deployments and the recipectl CLI.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Store serves every collection from one SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ ports.Store = (*Store)(nil)

// Open creates or opens the database at path and applies the schema.
//
// SQLite allows one writer at a time, so the pool holds a single
// connection.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("Opened SQLite store", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// References returns a repository per entity kind
func (s *Store) References() ports.ReferenceRepositories {
	repos := make(ports.ReferenceRepositories, len(valueobjects.AllKinds))
	for _, kind := range valueobjects.AllKinds {
		repos[kind] = &referenceRepository{db: s.db, kind: kind}
	}
	return repos
}

func (s *Store) Recipes() ports.RecipeRepository   { return &recipeRepository{db: s.db} }
func (s *Store) Pairings() ports.PairingRepository { return &pairingRepository{db: s.db} }

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// deleteByID deletes one row and reports a missing row as NotFound.
func deleteByID(ctx context.Context, db *sql.DB, query, resource string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete "+resource, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("delete "+resource, err)
	}
	if n == 0 {
		return pkgerrors.NewNotFoundError(resource)
	}
	return nil
}

func deleteAll(ctx context.Context, db *sql.DB, query, resource string, args ...any) (int, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("clear "+resource, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("clear "+resource, err)
	}
	return int(n), nil
}
