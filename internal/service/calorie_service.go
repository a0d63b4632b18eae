package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/mealcal/internal/domain"
	"github.com/vbonduro/mealcal/internal/mealdb"
)

// calorieLookup is satisfied by *nutrition.Lookup. It never fails; an
// unknown ingredient counts as 0.
type calorieLookup interface {
	CaloriesFor(ctx context.Context, ingredientName, measure string) float64
}

type CalorieService struct {
	source      mealSource
	nutrition   calorieLookup
	concurrency int
	logger      *slog.Logger
}

func NewCalorieService(source mealSource, nutrition calorieLookup, concurrency int, logger *slog.Logger) *CalorieService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CalorieService{
		source:      source,
		nutrition:   nutrition,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ComputeCalories totals the calories of a catalog meal. Lookups run in
// parallel; results keep the meal's slot order and the total is rounded to
// two decimals once, after summing.
func (s *CalorieService) ComputeCalories(ctx context.Context, externalID string) (*domain.CalorieResponse, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, domain.Invalid("externalId", "is required")
	}

	meal, err := s.source.Lookup(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up external meal: %w", err)
	}
	if meal == nil {
		return nil, fmt.Errorf("external meal %s: %w", externalID, domain.ErrNotFound)
	}

	results := make([]domain.IngredientCalorie, len(meal.Ingredients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ing := range meal.Ingredients {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = domain.IngredientCalorie{
				IngredientName: ing.Name,
				Measure:        ing.Measure,
				Calories:       s.nutrition.CaloriesFor(gctx, ing.Name, ing.Measure),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to look up ingredient calories: %w", err)
	}

	total := decimal.Zero
	for _, r := range results {
		total = total.Add(decimal.NewFromFloat(r.Calories))
	}

	resp := &domain.CalorieResponse{
		MealID:        meal.ID,
		MealName:      meal.Name,
		Ingredients:   results,
		TotalCalories: roundHalfUp(total),
	}
	s.logger.Info("calories computed", "external_id", externalID, "ingredients", len(results), "total", resp.TotalCalories)
	return resp, nil
}

// FindLeastIngredientsMeal returns the catalog match with the fewest
// ingredients, or nil when nothing matches. Ties keep the earliest match.
func (s *CalorieService) FindLeastIngredientsMeal(ctx context.Context, query string) (*mealdb.Meal, error) {
	meals, err := s.source.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search external meals: %w", err)
	}

	var best *mealdb.Meal
	for i := range meals {
		if best == nil || meals[i].IngredientCount() < best.IngredientCount() {
			best = &meals[i]
		}
	}
	return best, nil
}

func (s *CalorieService) SearchExternal(ctx context.Context, query string) ([]mealdb.Meal, error) {
	meals, err := s.source.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search external meals: %w", err)
	}
	return meals, nil
}

// roundHalfUp rounds a non-negative total to two decimals in decimal
// arithmetic, so 1.005 -> 1.01 even though the float64 1.005 is slightly
// below it.
func roundHalfUp(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
