package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/mealcal/internal/domain"
)

// ReferenceStore owns one of the name-keyed reference tables.
type ReferenceStore struct {
	db    Querier
	kind  domain.ReferenceKind
	table string
	// selectCols always yields (id, external_id, name); ingredients have no
	// external_id column.
	selectCols string
}

func NewCategoryStore(db Querier) *ReferenceStore {
	return &ReferenceStore{db: db, kind: domain.KindCategory, table: "categories", selectCols: "id, external_id, name"}
}

func NewAreaStore(db Querier) *ReferenceStore {
	return &ReferenceStore{db: db, kind: domain.KindArea, table: "areas", selectCols: "id, external_id, name"}
}

func NewIngredientStore(db Querier) *ReferenceStore {
	return &ReferenceStore{db: db, kind: domain.KindIngredient, table: "ingredients", selectCols: "id, NULL, name"}
}

func (s *ReferenceStore) Kind() domain.ReferenceKind {
	return s.kind
}

// Resolve returns the record named name, creating it if it does not exist.
// A concurrent writer may insert the same name between the lookup and the
// insert; the unique constraint rejects the second insert and the lookup is
// repeated.
func (s *ReferenceStore) Resolve(ctx context.Context, name string) (*domain.Reference, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.Invalid(string(s.kind), "name must not be blank")
	}

	ref, err := s.FindByName(ctx, name)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	id, err := s.create(ctx, name)
	if err == nil {
		return &domain.Reference{ID: id, Kind: s.kind, Name: name}, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}

	ref, err = s.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read %s %q after conflict: %w", s.kind, name, err)
	}
	return ref, nil
}

func (s *ReferenceStore) create(ctx context.Context, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (name) VALUES (?)`, s.table), name)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", s.kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// FindByName looks up an exact, case-sensitive name.
func (s *ReferenceStore) FindByName(ctx context.Context, name string) (*domain.Reference, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE name = ?`, s.selectCols, s.table), name)
	ref, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", s.kind, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}
	return ref, nil
}

func (s *ReferenceStore) GetByID(ctx context.Context, id int64) (*domain.Reference, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, s.selectCols, s.table), id)
	ref, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", s.kind, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}
	return ref, nil
}

// Names lists every distinct name in alphabetical order.
func (s *ReferenceStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name ASC`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s names: %w", s.kind, err)
	}
	defer closeRows(rows)

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s name: %w", s.kind, err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s names: %w", s.kind, err)
	}

	return names, nil
}

func (s *ReferenceStore) scan(row *sql.Row) (*domain.Reference, error) {
	ref := &domain.Reference{Kind: s.kind}
	var externalID sql.NullInt64
	if err := row.Scan(&ref.ID, &externalID, &ref.Name); err != nil {
		return nil, err
	}
	if externalID.Valid {
		ref.ExternalID = &externalID.Int64
	}
	return ref, nil
}
