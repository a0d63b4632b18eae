package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so every store can run
// inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos groups the stores bound to a single Querier.
type Repos struct {
	Categories  *ReferenceStore
	Areas       *ReferenceStore
	Ingredients *ReferenceStore
	Meals       *MealStore
}

func NewRepos(q Querier) *Repos {
	return &Repos{
		Categories:  NewCategoryStore(q),
		Areas:       NewAreaStore(q),
		Ingredients: NewIngredientStore(q),
		Meals:       NewMealStore(q),
	}
}

// Store is the database-backed Repos plus transaction support.
type Store struct {
	*Repos
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{Repos: NewRepos(db), db: db}
}

// WithinTx runs fn against stores bound to a new transaction. The transaction
// is committed if fn returns nil and rolled back otherwise. fn must not use
// the non-transactional stores: the pool has a single connection.
func (s *Store) WithinTx(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(NewRepos(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE constraint failed")
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
