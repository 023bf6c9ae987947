package repository

import (
	"sort"
	"time"

	"prep_tracker/internal/domain/model"

	"github.com/google/uuid"
)

// prepareProblem fills in identity and timestamps before a problem is stored.
func prepareProblem(p *model.Problem) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.SolvedAt.IsZero() {
		p.SolvedAt = p.CreatedAt
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// cloneProblem returns a copy that shares no memory with p.
func cloneProblem(p model.Problem) model.Problem {
	p.Tags = append([]string{}, p.Tags...)
	p.Difficulty = clonePtr(p.Difficulty)
	p.Category = clonePtr(p.Category)
	p.URL = clonePtr(p.URL)
	return p
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func prepareRecommendations(userID string, recs []model.Recommendation) []model.Recommendation {
	now := time.Now().UTC()
	out := make([]model.Recommendation, len(recs))
	for i, r := range recs {
		r.ID = uuid.NewString()
		r.UserID = userID
		r.CreatedAt = now
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProblemName < out[j].ProblemName
	})
	return out
}

func platformRank(p model.Platform) int {
	for i, known := range model.Platforms {
		if known == p {
			return i
		}
	}
	return len(model.Platforms)
}

func sortByPlatform[T any](items []T, platformOf func(T) model.Platform) {
	sort.SliceStable(items, func(i, j int) bool {
		return platformRank(platformOf(items[i])) < platformRank(platformOf(items[j]))
	})
}
