package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	MealDBBaseURL string
	MealDBTimeout time.Duration

	NutritionBaseURL     string
	NutritionAPIKey      string
	NutritionTimeout     time.Duration
	NutritionConcurrency int

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		DBPath:               getEnv("DB_PATH", "/data/mealcal.db"),
		MealDBBaseURL:        getEnv("MEALDB_BASE_URL", "https://www.themealdb.com/api/json/v1/1"),
		MealDBTimeout:        getDuration("MEALDB_TIMEOUT", 10*time.Second),
		NutritionBaseURL:     getEnv("NUTRITION_BASE_URL", "https://api.calorieninjas.com"),
		NutritionAPIKey:      getEnv("NUTRITION_API_KEY", ""),
		NutritionTimeout:     getDuration("NUTRITION_TIMEOUT", 5*time.Second),
		NutritionConcurrency: getInt("NUTRITION_CONCURRENCY", 4),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		LogFile:              getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getList(key string, defaultVal []string) []string {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
