package nutrition

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// CalorieSource returns the calories for a free-text ingredient phrase.
type CalorieSource interface {
	Calories(ctx context.Context, query string) (float64, error)
}

// Lookup resolves an ingredient and its measure to a calorie count. It never
// fails: any error from the source is logged and counted as 0.
type Lookup struct {
	source  CalorieSource
	timeout time.Duration
	logger  *slog.Logger
}

func NewLookup(source CalorieSource, timeout time.Duration, logger *slog.Logger) *Lookup {
	return &Lookup{source: source, timeout: timeout, logger: logger}
}

func (l *Lookup) CaloriesFor(ctx context.Context, ingredientName, measure string) float64 {
	query := Phrase(ingredientName, measure)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	kcal, err := l.source.Calories(ctx, query)
	if err != nil {
		l.logger.Warn("nutrition lookup failed", "query", query, "error", err)
		return 0
	}
	return kcal
}

// Phrase builds the query text, e.g. "3/4 cup soy sauce".
func Phrase(ingredientName, measure string) string {
	ingredientName = strings.TrimSpace(ingredientName)
	measure = strings.TrimSpace(measure)
	if measure == "" {
		return ingredientName
	}
	return measure + " " + ingredientName
}
