package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMealDetail(t *testing.T) {
	ext := int64(52772)
	m := &Meal{
		ID:         7,
		ExternalID: &ext,
		Name:       "Teriyaki Chicken",
		Category:   &Reference{ID: 1, Kind: KindCategory, Name: "Chicken"},
		IsExternal: true,
		Ingredients: []MealIngredient{
			{ID: 1, IngredientID: 3, IngredientName: "Soy Sauce", Measure: "3/4 cup"},
			{ID: 2, IngredientID: 4, IngredientName: "Water", Measure: "1/2 cup"},
		},
	}

	d := NewMealDetail(m)

	assert.Equal(t, int64(7), d.ID)
	assert.Equal(t, &ext, d.ExternalID)
	assert.Equal(t, "Chicken", d.CategoryName)
	assert.Empty(t, d.AreaName)
	assert.True(t, d.IsExternal)
	assert.Equal(t, []MealIngredientDetail{
		{IngredientID: 3, Name: "Soy Sauce", Measure: "3/4 cup"},
		{IngredientID: 4, Name: "Water", Measure: "1/2 cup"},
	}, d.Ingredients)
}

func TestNewMealDetail_NoIngredientsIsEmptySlice(t *testing.T) {
	d := NewMealDetail(&Meal{ID: 1, Name: "Toast"})
	assert.NotNil(t, d.Ingredients)
	assert.Empty(t, d.Ingredients)
}

func TestValidationErrorIs(t *testing.T) {
	err := fmt.Errorf("create meal: %w", Invalid("name", "is required"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "create meal: name: is required")

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}
