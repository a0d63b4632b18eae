package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxIngredientSlots is the number of numbered ingredient fields in a
// catalog record (strIngredient1..strIngredient20).
const MaxIngredientSlots = 20

// RawMeal is a catalog record exactly as decoded from JSON. Values are
// strings, json.Number or nil.
type RawMeal map[string]any

// Ingredient is one occupied slot of a catalog record.
type Ingredient struct {
	Slot    int    `json:"slot"`
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Meal is the typed form of a catalog record.
type Meal struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	Area         string       `json:"area,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Tags         string       `json:"tags,omitempty"`
	YouTube      string       `json:"youtube,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// IngredientCount is the number of occupied ingredient slots.
func (m *Meal) IngredientCount() int {
	return len(m.Ingredients)
}

// ParseMeal converts a raw record. Every slot from 1 to MaxIngredientSlots is
// inspected because occupied slots are not guaranteed to be contiguous; a slot
// is kept iff its ingredient name is non-blank.
func ParseMeal(raw RawMeal) Meal {
	m := Meal{
		ID:           field(raw, "idMeal"),
		Name:         field(raw, "strMeal"),
		Category:     field(raw, "strCategory"),
		Area:         field(raw, "strArea"),
		Instructions: field(raw, "strInstructions"),
		Thumbnail:    field(raw, "strMealThumb"),
		Tags:         field(raw, "strTags"),
		YouTube:      field(raw, "strYoutube"),
		Ingredients:  make([]Ingredient, 0),
	}

	for slot := 1; slot <= MaxIngredientSlots; slot++ {
		name := field(raw, fmt.Sprintf("strIngredient%d", slot))
		if name == "" {
			continue
		}
		m.Ingredients = append(m.Ingredients, Ingredient{
			Slot:    slot,
			Name:    name,
			Measure: field(raw, fmt.Sprintf("strMeasure%d", slot)),
		})
	}

	return m
}

// field returns the trimmed string value of key, or "" when it is absent,
// null or of an unexpected type.
func field(raw RawMeal, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
