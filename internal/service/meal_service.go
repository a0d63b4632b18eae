package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vbonduro/mealcal/internal/domain"
	"github.com/vbonduro/mealcal/internal/mealdb"
	"github.com/vbonduro/mealcal/internal/store"
)

// mealSource is the subset of mealdb.Client the services require.
type mealSource interface {
	Search(ctx context.Context, name string) ([]mealdb.Meal, error)
	Lookup(ctx context.Context, id string) (*mealdb.Meal, error)
}

type CreateMealRequest struct {
	Name         string              `json:"name"`
	CategoryName string              `json:"categoryName"`
	AreaName     string              `json:"areaName"`
	Instructions string              `json:"instructions"`
	ThumbnailURL string              `json:"thumbnailUrl"`
	YoutubeURL   string              `json:"youtubeUrl"`
	Tags         string              `json:"tags"`
	Ingredients  []IngredientRequest `json:"ingredients"`
}

type IngredientRequest struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// MealFilter selects meals by category name or, failing that, ingredient
// name. An empty filter selects every meal.
type MealFilter struct {
	Category   string
	Ingredient string
}

type MealService struct {
	store  *store.Store
	source mealSource
	logger *slog.Logger
}

func NewMealService(st *store.Store, source mealSource, logger *slog.Logger) *MealService {
	return &MealService{store: st, source: source, logger: logger}
}

// CreateUserMeal stores a user-submitted meal. References are resolved and
// every row is written in one transaction, so a failure leaves no trace.
func (s *MealService) CreateUserMeal(ctx context.Context, req CreateMealRequest) (*domain.MealDetail, error) {
	req, err := normalizeCreateRequest(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("create meal started", "name", req.Name, "ingredients", len(req.Ingredients))

	var mealID int64
	err = s.store.WithinTx(ctx, func(r *store.Repos) error {
		meal := &domain.Meal{
			Name:         req.Name,
			Instructions: req.Instructions,
			ThumbnailURL: req.ThumbnailURL,
			YoutubeURL:   req.YoutubeURL,
			Tags:         req.Tags,
			IsExternal:   false,
		}
		if err := resolveMealReferences(ctx, r, meal, req.CategoryName, req.AreaName); err != nil {
			return err
		}

		id, err := r.Meals.Create(ctx, meal)
		if err != nil {
			return err
		}
		mealID = id

		for _, ing := range req.Ingredients {
			if err := addIngredient(ctx, r, id, ing.Name, ing.Measure); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	s.logger.Info("create meal complete", "meal_id", mealID)
	return s.GetMeal(ctx, mealID)
}

func normalizeCreateRequest(req CreateMealRequest) (CreateMealRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	req.AreaName = strings.TrimSpace(req.AreaName)

	if req.Name == "" {
		return req, domain.Invalid("name", "meal name is required")
	}
	if len(req.Ingredients) == 0 {
		return req, domain.Invalid("ingredients", "at least one ingredient is required")
	}

	seen := make(map[string]int, len(req.Ingredients))
	ingredients := make([]IngredientRequest, 0, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		name := strings.TrimSpace(ing.Name)
		measure := strings.TrimSpace(ing.Measure)
		if name == "" {
			return req, domain.Invalid(fmt.Sprintf("ingredients[%d].name", i), "ingredient name is required")
		}
		if measure == "" {
			return req, domain.Invalid(fmt.Sprintf("ingredients[%d].measure", i), "measure is required")
		}
		if first, ok := seen[name]; ok {
			return req, domain.Invalid(fmt.Sprintf("ingredients[%d].name", i),
				fmt.Sprintf("duplicate of ingredients[%d] (%q)", first, name))
		}
		seen[name] = i
		ingredients = append(ingredients, IngredientRequest{Name: name, Measure: measure})
	}
	req.Ingredients = ingredients
	return req, nil
}

func resolveMealReferences(ctx context.Context, r *store.Repos, meal *domain.Meal, category, area string) error {
	if category != "" {
		ref, err := r.Categories.Resolve(ctx, category)
		if err != nil {
			return fmt.Errorf("failed to resolve category: %w", err)
		}
		meal.Category = ref
	}
	if area != "" {
		ref, err := r.Areas.Resolve(ctx, area)
		if err != nil {
			return fmt.Errorf("failed to resolve area: %w", err)
		}
		meal.Area = ref
	}
	return nil
}

func addIngredient(ctx context.Context, r *store.Repos, mealID int64, name, measure string) error {
	ref, err := r.Ingredients.Resolve(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve ingredient: %w", err)
	}
	if _, err := r.Meals.AddIngredient(ctx, mealID, ref.ID, measure); err != nil {
		return err
	}
	return nil
}

func (s *MealService) GetMeal(ctx context.Context, id int64) (*domain.MealDetail, error) {
	meal, err := s.store.Meals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewMealDetail(meal), nil
}

// ListMeals applies the category filter first, then the ingredient filter.
// A filter naming an unknown category or ingredient yields ErrNotFound.
func (s *MealService) ListMeals(ctx context.Context, f MealFilter) ([]domain.MealCard, error) {
	category := strings.TrimSpace(f.Category)
	ingredient := strings.TrimSpace(f.Ingredient)

	switch {
	case category != "":
		ref, err := s.store.Categories.FindByName(ctx, category)
		if err != nil {
			return nil, err
		}
		return s.store.Meals.ListByCategory(ctx, ref.ID)
	case ingredient != "":
		ref, err := s.store.Ingredients.FindByName(ctx, ingredient)
		if err != nil {
			return nil, err
		}
		return s.store.Meals.ListByIngredient(ctx, ref.ID)
	default:
		return s.store.Meals.List(ctx)
	}
}

func (s *MealService) SearchMeals(ctx context.Context, name string) ([]domain.MealCard, error) {
	return s.store.Meals.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *MealService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories.Names(ctx)
}

func (s *MealService) Areas(ctx context.Context) ([]string, error) {
	return s.store.Areas.Names(ctx)
}

func (s *MealService) Ingredients(ctx context.Context) ([]string, error) {
	return s.store.Ingredients.Names(ctx)
}

func (s *MealService) DeleteMeal(ctx context.Context, id int64) error {
	if err := s.store.Meals.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("meal deleted", "meal_id", id)
	return nil
}

// ImportExternalMeal copies a catalog meal into the local store. It is
// idempotent on the catalog id: created is false when the meal was already
// imported.
func (s *MealService) ImportExternalMeal(ctx context.Context, externalID string) (detail *domain.MealDetail, created bool, err error) {
	extID, err := parseExternalID(externalID)
	if err != nil {
		return nil, false, err
	}

	if existing, err := s.store.Meals.GetByExternalID(ctx, extID); err == nil {
		return domain.NewMealDetail(existing), false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	ext, err := s.source.Lookup(ctx, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up external meal: %w", err)
	}
	if ext == nil {
		return nil, false, fmt.Errorf("external meal %s: %w", externalID, domain.ErrNotFound)
	}
	if ext.Name == "" {
		return nil, false, fmt.Errorf("external meal %s has no name: %w", externalID, domain.ErrUpstream)
	}

	var mealID int64
	err = s.store.WithinTx(ctx, func(r *store.Repos) error {
		meal := &domain.Meal{
			ExternalID:   &extID,
			Name:         ext.Name,
			Instructions: ext.Instructions,
			ThumbnailURL: ext.Thumbnail,
			YoutubeURL:   ext.YouTube,
			Tags:         ext.Tags,
			IsExternal:   true,
		}
		if err := resolveMealReferences(ctx, r, meal, ext.Category, ext.Area); err != nil {
			return err
		}

		id, err := r.Meals.Create(ctx, meal)
		if err != nil {
			return err
		}
		mealID = id

		seen := make(map[string]bool, len(ext.Ingredients))
		for _, ing := range ext.Ingredients {
			// The catalog occasionally lists an ingredient twice.
			if seen[ing.Name] {
				s.logger.Debug("skipping repeated external ingredient", "external_id", extID, "ingredient", ing.Name, "slot", ing.Slot)
				continue
			}
			seen[ing.Name] = true
			if err := addIngredient(ctx, r, id, ing.Name, ing.Measure); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Lost a race with a concurrent import of the same meal.
		if existing, getErr := s.store.Meals.GetByExternalID(ctx, extID); getErr == nil {
			return domain.NewMealDetail(existing), false, nil
		}
		return nil, false, fmt.Errorf("failed to import meal: %w", err)
	}

	s.logger.Info("external meal imported", "external_id", extID, "meal_id", mealID, "ingredients", len(ext.Ingredients))
	detail, err = s.GetMeal(ctx, mealID)
	if err != nil {
		return nil, false, err
	}
	return detail, true, nil
}

func parseExternalID(externalID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(externalID), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("externalId", "must be a positive integer")
	}
	return id, nil
}
