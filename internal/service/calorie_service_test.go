package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/mealcal/internal/domain"
	"github.com/vbonduro/mealcal/internal/mealdb"
	"github.com/vbonduro/mealcal/internal/nutrition"
)

// tableLookup answers from a fixed name -> calories table; unknown names are 0.
type tableLookup struct {
	mu       sync.Mutex
	kcal     map[string]float64
	delay    map[string]time.Duration
	inFlight int
	maxSeen  int
}

func (l *tableLookup) CaloriesFor(_ context.Context, name, _ string) float64 {
	l.mu.Lock()
	l.inFlight++
	if l.inFlight > l.maxSeen {
		l.maxSeen = l.inFlight
	}
	l.mu.Unlock()

	time.Sleep(l.delay[name])

	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
	return l.kcal[name]
}

type sourceFunc func(ctx context.Context, query string) (float64, error)

func (f sourceFunc) Calories(ctx context.Context, query string) (float64, error) {
	return f(ctx, query)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mealWith(id string, ingredients ...string) *mealdb.Meal {
	m := &mealdb.Meal{ID: id, Name: "Meal " + id}
	for i, name := range ingredients {
		m.Ingredients = append(m.Ingredients, mealdb.Ingredient{Slot: i + 1, Name: name, Measure: "1 cup"})
	}
	return m
}

func TestCalorieServiceComputeCalories(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1", "A", "B")}}
	lookup := &tableLookup{kcal: map[string]float64{"A": 50, "B": 30}}
	svc := NewCalorieService(src, lookup, 4, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "1", resp.MealID)
	assert.Equal(t, "Meal 1", resp.MealName)
	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, "A", resp.Ingredients[0].IngredientName)
	assert.Equal(t, 50.0, resp.Ingredients[0].Calories)
	assert.Equal(t, "B", resp.Ingredients[1].IngredientName)
	assert.Equal(t, 30.0, resp.Ingredients[1].Calories)
	assert.Equal(t, 80.0, resp.TotalCalories)
}

func TestCalorieServiceComputeCalories_FailedLookupCountsZero(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1", "Rice", "Unobtainium")}}
	calories := sourceFunc(func(_ context.Context, query string) (float64, error) {
		if query == "1 cup Unobtainium" {
			return 0, errors.New("no items")
		}
		return 206, nil
	})
	svc := NewCalorieService(src, nutrition.NewLookup(calories, time.Second, quietLogger()), 2, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 206.0, resp.Ingredients[0].Calories)
	assert.Zero(t, resp.Ingredients[1].Calories)
	assert.Equal(t, 206.0, resp.TotalCalories)
}

func TestCalorieServiceComputeCalories_KeepsSlotOrder(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F"}
	lookup := &tableLookup{kcal: map[string]float64{}, delay: map[string]time.Duration{}}
	for i, name := range names {
		lookup.kcal[name] = float64(i + 1)
		// Earlier slots finish last.
		lookup.delay[name] = time.Duration(len(names)-i) * 5 * time.Millisecond
	}
	src := &stubSource{meals: map[string]*mealdb.Meal{"9": mealWith("9", names...)}}
	svc := NewCalorieService(src, lookup, 3, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "9")
	require.NoError(t, err)

	require.Len(t, resp.Ingredients, len(names))
	for i, name := range names {
		assert.Equal(t, name, resp.Ingredients[i].IngredientName)
	}
	assert.Equal(t, 21.0, resp.TotalCalories)
	assert.LessOrEqual(t, lookup.maxSeen, 3)
}

func TestCalorieServiceComputeCalories_RoundsTotalOnce(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1", "A", "B", "C")}}
	lookup := &tableLookup{kcal: map[string]float64{"A": 33.333, "B": 33.333, "C": 33.334}}
	svc := NewCalorieService(src, lookup, 1, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, resp.TotalCalories)
	assert.Equal(t, 33.333, resp.Ingredients[0].Calories)
}

func TestCalorieServiceComputeCalories_NoIngredients(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1")}}
	svc := NewCalorieService(src, &tableLookup{}, 4, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, resp.Ingredients)
	assert.Zero(t, resp.TotalCalories)
}

func TestCalorieServiceComputeCalories_Errors(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{}}
	svc := NewCalorieService(src, &tableLookup{}, 4, quietLogger())
	ctx := context.Background()

	_, err := svc.ComputeCalories(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ComputeCalories(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	src.err = domain.ErrUpstream
	_, err = svc.ComputeCalories(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCalorieServiceFindLeastIngredientsMeal(t *testing.T) {
	src := &stubSource{results: []mealdb.Meal{
		*mealWith("1", "a", "b", "c", "d", "e"),
		*mealWith("2", "a", "b", "c"),
		*mealWith("3", "x", "y", "z"),
	}}
	svc := NewCalorieService(src, &tableLookup{}, 4, quietLogger())

	meal, err := svc.FindLeastIngredientsMeal(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, meal)
	assert.Equal(t, "2", meal.ID)
}

func TestCalorieServiceFindLeastIngredientsMeal_NoMatch(t *testing.T) {
	svc := NewCalorieService(&stubSource{}, &tableLookup{}, 4, quietLogger())

	meal, err := svc.FindLeastIngredientsMeal(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Nil(t, meal)
}

func TestCalorieServiceSearchExternal(t *testing.T) {
	src := &stubSource{results: []mealdb.Meal{*mealWith("1", "a")}}
	svc := NewCalorieService(src, &tableLookup{}, 4, quietLogger())

	meals, err := svc.SearchExternal(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, meals, 1)

	src.err = domain.ErrUpstream
	_, err = svc.SearchExternal(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.125, 0.13},
		{0.124, 0.12},
		{80, 80},
		{99.999, 100},
		{1.005, 1.01},
		{0.145, 0.15},
		{2.675, 2.68},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundHalfUp(decimal.NewFromFloat(tt.in)), "roundHalfUp(%v)", tt.in)
	}
}

func TestCalorieServiceComputeCalories_RoundsDecimalTies(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1", "A", "B")}}
	lookup := &tableLookup{kcal: map[string]float64{"A": 1.0, "B": 0.005}}
	svc := NewCalorieService(src, lookup, 2, quietLogger())

	resp, err := svc.ComputeCalories(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1.01, resp.TotalCalories)
}

func TestCalorieServiceComputeCalories_CancelledContext(t *testing.T) {
	src := &stubSource{meals: map[string]*mealdb.Meal{"1": mealWith("1", "A", "B")}}
	svc := NewCalorieService(src, &tableLookup{kcal: map[string]float64{"A": 1, "B": 2}}, 2, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ComputeCalories(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
