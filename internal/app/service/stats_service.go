package service

import (
	"context"
	"sort"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/logger"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

type StatsService struct {
	store repository.Storage
	log   *logger.Logger
}

func NewStatsService(store repository.Storage, log *logger.Logger) *StatsService {
	return &StatsService{store: store, log: log.With("service", "StatsService")}
}

func (s *StatsService) GetStats(ctx context.Context, userID string) (*model.Stats, error) {
	problems, err := s.store.GetUserProblems(ctx, userID)
	if err != nil {
		return nil, common.Errorf("load problems: %w", err)
	}
	aggregates, err := s.store.GetPlatformStats(ctx, userID)
	if err != nil {
		return nil, common.Errorf("load platform stats: %w", err)
	}
	return ComputeStats(aggregates, problems), nil
}

// GetRecentActivity returns the newest problems; limit defaults to 10 and is capped at 50.
func (s *StatsService) GetRecentActivity(ctx context.Context, userID string, limit int) ([]model.Problem, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.GetRecentProblems(ctx, userID, limit)
}

// ComputeStats merges platform aggregates with individually stored problems.
// A platform with an aggregate is counted from the aggregate alone; its problems still
// feed category stats. Platforms without one are counted from their problems, and only
// problems with a difficulty land in a difficulty bucket.
func ComputeStats(aggregates []model.PlatformStat, problems []model.Problem) *model.Stats {
	breakdown := map[model.Platform]*model.PlatformBreakdown{}
	aggregated := map[model.Platform]bool{}
	for _, a := range aggregates {
		aggregated[a.Platform] = true
		breakdown[a.Platform] = &model.PlatformBreakdown{
			Platform: a.Platform,
			Count:    a.TotalSolved,
			Easy:     a.EasySolved,
			Medium:   a.MediumSolved,
			Hard:     a.HardSolved,
		}
	}

	categories := map[string]int{}
	for _, p := range problems {
		if p.Category != nil {
			categories[*p.Category]++
		}
		if aggregated[p.Platform] {
			continue
		}
		b, ok := breakdown[p.Platform]
		if !ok {
			b = &model.PlatformBreakdown{Platform: p.Platform}
			breakdown[p.Platform] = b
		}
		b.Count++
		if p.Difficulty == nil {
			continue
		}
		switch *p.Difficulty {
		case model.DifficultyEasy:
			b.Easy++
		case model.DifficultyMedium:
			b.Medium++
		case model.DifficultyHard:
			b.Hard++
		}
	}

	stats := &model.Stats{PlatformStats: []model.PlatformBreakdown{}, CategoryStats: []model.CategoryCount{}}
	for _, b := range breakdown {
		stats.PlatformStats = append(stats.PlatformStats, *b)
		stats.Total += b.Count
		stats.Easy += b.Easy
		stats.Medium += b.Medium
		stats.Hard += b.Hard
	}
	sort.Slice(stats.PlatformStats, func(i, j int) bool {
		return platformOrder(stats.PlatformStats[i].Platform) < platformOrder(stats.PlatformStats[j].Platform)
	})

	for c, n := range categories {
		stats.CategoryStats = append(stats.CategoryStats, model.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(stats.CategoryStats, func(i, j int) bool {
		a, b := stats.CategoryStats[i], stats.CategoryStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	return stats
}

func platformOrder(p model.Platform) int {
	for i, known := range model.Platforms {
		if known == p {
			return i
		}
	}
	return len(model.Platforms)
}
