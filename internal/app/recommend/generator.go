package recommend

import (
	"context"

	"prep_tracker/internal/domain/model"
)

// Generator produces ranked practice suggestions from a user's stats and recent history.
// An empty result means no suggestions are available and is not an error.
type Generator interface {
	Generate(ctx context.Context, stats *model.Stats, recent []model.Problem) ([]model.Recommendation, error)
}

// NopGenerator never suggests anything. Used when no model API key is configured.
type NopGenerator struct{}

func (NopGenerator) Generate(context.Context, *model.Stats, []model.Problem) ([]model.Recommendation, error) {
	return nil, nil
}
