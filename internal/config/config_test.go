package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.MealDBBaseURL)
	assert.Positive(t, cfg.NutritionConcurrency)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("NUTRITION_API_KEY", "key-123")
	t.Setenv("NUTRITION_TIMEOUT", "750ms")
	t.Setenv("NUTRITION_CONCURRENCY", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "key-123", cfg.NutritionAPIKey)
	assert.Equal(t, 750*time.Millisecond, cfg.NutritionTimeout)
	assert.Equal(t, 8, cfg.NutritionConcurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MEALDB_TIMEOUT", "soon")
	t.Setenv("NUTRITION_CONCURRENCY", "-2")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.MealDBTimeout)
	assert.Equal(t, 4, cfg.NutritionConcurrency)
}
