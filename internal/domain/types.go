package domain

import "time"

// ReferenceKind names one of the shared, name-keyed lookup tables.
type ReferenceKind string

const (
	KindCategory   ReferenceKind = "category"
	KindArea       ReferenceKind = "area"
	KindIngredient ReferenceKind = "ingredient"
)

// Reference is a Category, Area or Ingredient row. Ingredients never carry an
// ExternalID.
type Reference struct {
	ID         int64
	Kind       ReferenceKind
	ExternalID *int64
	Name       string
}

type Meal struct {
	ID           int64
	ExternalID   *int64
	Name         string
	Category     *Reference
	Area         *Reference
	Instructions string
	ThumbnailURL string
	YoutubeURL   string
	Tags         string
	IsExternal   bool
	CreatedBy    *int64
	Ingredients  []MealIngredient
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MealIngredient is one association row between a meal and an ingredient.
type MealIngredient struct {
	ID             int64
	MealID         int64
	IngredientID   int64
	IngredientName string
	Measure        string
}

// MealCard is the list projection of a meal.
type MealCard struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// MealDetail is the full projection of a stored meal.
type MealDetail struct {
	ID           int64                  `json:"id"`
	ExternalID   *int64                 `json:"externalId"`
	Name         string                 `json:"name"`
	CategoryName string                 `json:"categoryName,omitempty"`
	AreaName     string                 `json:"areaName,omitempty"`
	Instructions string                 `json:"instructions,omitempty"`
	ThumbnailURL string                 `json:"thumbnailUrl,omitempty"`
	YoutubeURL   string                 `json:"youtubeUrl,omitempty"`
	Tags         string                 `json:"tags,omitempty"`
	IsExternal   bool                   `json:"isExternal"`
	Ingredients  []MealIngredientDetail `json:"ingredients"`
}

type MealIngredientDetail struct {
	IngredientID int64  `json:"ingredientId"`
	Name         string `json:"name"`
	Measure      string `json:"measure"`
}

// NewMealDetail projects a fully loaded meal.
func NewMealDetail(m *Meal) *MealDetail {
	d := &MealDetail{
		ID:           m.ID,
		ExternalID:   m.ExternalID,
		Name:         m.Name,
		Instructions: m.Instructions,
		ThumbnailURL: m.ThumbnailURL,
		YoutubeURL:   m.YoutubeURL,
		Tags:         m.Tags,
		IsExternal:   m.IsExternal,
		Ingredients:  make([]MealIngredientDetail, 0, len(m.Ingredients)),
	}
	if m.Category != nil {
		d.CategoryName = m.Category.Name
	}
	if m.Area != nil {
		d.AreaName = m.Area.Name
	}
	for _, mi := range m.Ingredients {
		d.Ingredients = append(d.Ingredients, MealIngredientDetail{
			IngredientID: mi.IngredientID,
			Name:         mi.IngredientName,
			Measure:      mi.Measure,
		})
	}
	return d
}

type IngredientCalorie struct {
	IngredientName string  `json:"ingredientName"`
	Measure        string  `json:"measure"`
	Calories       float64 `json:"calories"`
}

type CalorieResponse struct {
	MealID        string              `json:"mealId"`
	MealName      string              `json:"mealName"`
	Ingredients   []IngredientCalorie `json:"ingredients"`
	TotalCalories float64             `json:"totalCalories"`
}
