package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/mealcal/internal/db"
	"github.com/vbonduro/mealcal/internal/domain"
)

type MealStore struct {
	db Querier
}

func NewMealStore(db Querier) *MealStore {
	return &MealStore{db: db}
}

const mealColumns = `
	m.id, m.external_id, m.name,
	m.category_id, c.name, m.area_id, a.name,
	m.instructions, m.thumbnail_url, m.youtube_url, m.tags,
	m.is_external, m.created_by, m.created_at, m.updated_at
	FROM meals m
	LEFT JOIN categories c ON c.id = m.category_id
	LEFT JOIN areas a ON a.id = m.area_id`

// Create inserts the meal row only; associations are added with AddIngredient.
func (s *MealStore) Create(ctx context.Context, m *domain.Meal) (int64, error) {
	var categoryID, areaID any
	if m.Category != nil {
		categoryID = m.Category.ID
	}
	if m.Area != nil {
		areaID = m.Area.ID
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (external_id, name, category_id, area_id, instructions,
			thumbnail_url, youtube_url, tags, is_external, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ExternalID, m.Name, categoryID, areaID, nullString(m.Instructions),
		nullString(m.ThumbnailURL), nullString(m.YoutubeURL), nullString(m.Tags), m.IsExternal, m.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("meal with external id already exists: %w", domain.ErrValidation)
		}
		return 0, fmt.Errorf("failed to create meal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

func (s *MealStore) AddIngredient(ctx context.Context, mealID, ingredientID int64, measure string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO meal_ingredients (meal_id, ingredient_id, measure) VALUES (?, ?, ?)
	`, mealID, ingredientID, measure)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("ingredient %d already on meal %d: %w", ingredientID, mealID, domain.ErrValidation)
		}
		return 0, fmt.Errorf("failed to add meal ingredient: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// GetByID loads a meal with its category, area and ingredients.
func (s *MealStore) GetByID(ctx context.Context, id int64) (*domain.Meal, error) {
	return s.getOne(ctx, "SELECT"+mealColumns+" WHERE m.id = ?", id)
}

func (s *MealStore) GetByExternalID(ctx context.Context, externalID int64) (*domain.Meal, error) {
	return s.getOne(ctx, "SELECT"+mealColumns+" WHERE m.external_id = ?", externalID)
}

func (s *MealStore) getOne(ctx context.Context, query string, arg int64) (*domain.Meal, error) {
	meal, err := scanMeal(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("meal %d: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	meal.Ingredients, err = s.ListIngredients(ctx, meal.ID)
	if err != nil {
		return nil, err
	}
	return meal, nil
}

// ListIngredients returns the meal's associations in insertion order.
func (s *MealStore) ListIngredients(ctx context.Context, mealID int64) ([]domain.MealIngredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mi.id, mi.meal_id, mi.ingredient_id, i.name, mi.measure
		FROM meal_ingredients mi
		JOIN ingredients i ON i.id = mi.ingredient_id
		WHERE mi.meal_id = ?
		ORDER BY mi.id ASC
	`, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal ingredients: %w", err)
	}
	defer closeRows(rows)

	ingredients := []domain.MealIngredient{}
	for rows.Next() {
		var mi domain.MealIngredient
		if err := rows.Scan(&mi.ID, &mi.MealID, &mi.IngredientID, &mi.IngredientName, &mi.Measure); err != nil {
			return nil, fmt.Errorf("failed to scan meal ingredient: %w", err)
		}
		ingredients = append(ingredients, mi)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal ingredients: %w", err)
	}

	return ingredients, nil
}

func (s *MealStore) List(ctx context.Context) ([]domain.MealCard, error) {
	return s.listCards(ctx, `
		SELECT id, name, thumbnail_url FROM meals ORDER BY name ASC, id ASC
	`)
}

func (s *MealStore) ListByCategory(ctx context.Context, categoryID int64) ([]domain.MealCard, error) {
	return s.listCards(ctx, `
		SELECT id, name, thumbnail_url FROM meals
		WHERE category_id = ? ORDER BY name ASC, id ASC
	`, categoryID)
}

// ListByIngredient finds meals through the association table, which is the
// authoritative index of which meals use an ingredient.
func (s *MealStore) ListByIngredient(ctx context.Context, ingredientID int64) ([]domain.MealCard, error) {
	return s.listCards(ctx, `
		SELECT m.id, m.name, m.thumbnail_url FROM meal_ingredients mi
		JOIN meals m ON m.id = mi.meal_id
		WHERE mi.ingredient_id = ?
		ORDER BY m.name ASC, m.id ASC
	`, ingredientID)
}

// SearchByName matches meals whose name contains query, ignoring case for
// any Unicode letter. The query is matched literally; % and _ carry no
// special meaning.
func (s *MealStore) SearchByName(ctx context.Context, query string) ([]domain.MealCard, error) {
	return s.listCards(ctx, `
		SELECT id, name, thumbnail_url FROM meals
		WHERE instr(`+db.UnicodeLower+`(name), ?) > 0
		ORDER BY name ASC, id ASC
	`, strings.ToLower(query))
}

// Delete removes a meal; its meal_ingredients rows cascade.
func (s *MealStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM meals WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("meal %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (s *MealStore) listCards(ctx context.Context, query string, args ...any) ([]domain.MealCard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer closeRows(rows)

	cards := []domain.MealCard{}
	for rows.Next() {
		var card domain.MealCard
		var thumbnail sql.NullString
		if err := rows.Scan(&card.ID, &card.Name, &thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		card.ThumbnailURL = thumbnail.String
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meals: %w", err)
	}

	return cards, nil
}

func scanMeal(row *sql.Row) (*domain.Meal, error) {
	var (
		m                       domain.Meal
		externalID, createdBy   sql.NullInt64
		categoryID, areaID      sql.NullInt64
		categoryName, areaName  sql.NullString
		instructions, thumbnail sql.NullString
		youtube, tags           sql.NullString
	)
	err := row.Scan(&m.ID, &externalID, &m.Name,
		&categoryID, &categoryName, &areaID, &areaName,
		&instructions, &thumbnail, &youtube, &tags,
		&m.IsExternal, &createdBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if externalID.Valid {
		m.ExternalID = &externalID.Int64
	}
	if createdBy.Valid {
		m.CreatedBy = &createdBy.Int64
	}
	if categoryID.Valid {
		m.Category = &domain.Reference{ID: categoryID.Int64, Kind: domain.KindCategory, Name: categoryName.String}
	}
	if areaID.Valid {
		m.Area = &domain.Reference{ID: areaID.Int64, Kind: domain.KindArea, Name: areaName.String}
	}
	m.Instructions = instructions.String
	m.ThumbnailURL = thumbnail.String
	m.YoutubeURL = youtube.String
	m.Tags = tags.String
	return &m, nil
}
