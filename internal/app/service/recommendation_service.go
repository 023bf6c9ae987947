package service

import (
	"context"

	"prep_tracker/internal/app/recommend"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/logger"
)

const recommendationHistorySize = 5

type RecommendationService struct {
	store     repository.Storage
	stats     *StatsService
	generator recommend.Generator
	log       *logger.Logger
}

func NewRecommendationService(store repository.Storage, stats *StatsService, generator recommend.Generator, log *logger.Logger) *RecommendationService {
	return &RecommendationService{store: store, stats: stats, generator: generator, log: log.With("service", "RecommendationService")}
}

func (s *RecommendationService) List(ctx context.Context, userID string) ([]model.Recommendation, error) {
	return s.store.GetRecommendations(ctx, userID)
}

// Generate asks the generator for fresh suggestions. The stored set is replaced only
// when the generator returns something; failures leave the previous set in place.
func (s *RecommendationService) Generate(ctx context.Context, userID string) ([]model.Recommendation, error) {
	stats, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.GetRecentProblems(ctx, userID, recommendationHistorySize)
	if err != nil {
		return nil, err
	}

	recs, err := s.generator.Generate(ctx, stats, recent)
	if err != nil {
		s.log.Warn("recommendation generation failed", "user", userID, "error", err)
		recs = nil
	}
	if len(recs) > 0 {
		if err := s.store.ReplaceRecommendations(ctx, userID, recs); err != nil {
			return nil, err
		}
	}
	return s.store.GetRecommendations(ctx, userID)
}
