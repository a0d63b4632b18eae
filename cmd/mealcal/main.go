package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/vbonduro/mealcal/internal/config"
	"github.com/vbonduro/mealcal/internal/db"
	"github.com/vbonduro/mealcal/internal/logging"
	"github.com/vbonduro/mealcal/internal/mealdb"
	"github.com/vbonduro/mealcal/internal/nutrition"
	"github.com/vbonduro/mealcal/internal/service"
	"github.com/vbonduro/mealcal/internal/store"
	"github.com/vbonduro/mealcal/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.NutritionAPIKey == "" {
		logger.Warn("NUTRITION_API_KEY is not set; calorie lookups will report 0")
	}

	st := store.New(database)
	catalog := mealdb.NewClient(cfg.MealDBBaseURL, cfg.MealDBTimeout)
	lookup := nutrition.NewLookup(
		nutrition.NewClient(cfg.NutritionBaseURL, cfg.NutritionAPIKey),
		cfg.NutritionTimeout,
		logger,
	)

	mealService := service.NewMealService(st, catalog, logger)
	calorieService := service.NewCalorieService(catalog, lookup, cfg.NutritionConcurrency, logger)
	server := web.NewServer(mealService, calorieService, st, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
	}
}
