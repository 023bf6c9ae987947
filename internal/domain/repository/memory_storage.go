package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"

	"github.com/google/uuid"
)

type memoryStorage struct {
	mu              sync.RWMutex
	problems        map[string][]model.Problem
	stats           map[string]map[model.Platform]model.PlatformStat
	credentials     map[string]map[model.Platform]model.PlatformCredential
	recommendations map[string][]model.Recommendation
}

// NewMemoryStorage returns a Storage that keeps everything in process memory.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		problems:        map[string][]model.Problem{},
		stats:           map[string]map[model.Platform]model.PlatformStat{},
		credentials:     map[string]map[model.Platform]model.PlatformCredential{},
		recommendations: map[string][]model.Recommendation{},
	}
}

func (s *memoryStorage) CreateProblem(_ context.Context, p *model.Problem) error {
	prepareProblem(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problems[p.UserID] = append(s.problems[p.UserID], cloneProblem(*p))
	return nil
}

func (s *memoryStorage) GetUserProblems(_ context.Context, userID string) ([]model.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProblems(userID), nil
}

func (s *memoryStorage) GetRecentProblems(_ context.Context, userID string, limit int) ([]model.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sortedProblems(userID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStorage) sortedProblems(userID string) []model.Problem {
	src := s.problems[userID]
	out := make([]model.Problem, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, cloneProblem(src[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memoryStorage) UpdateProblemDifficulty(_ context.Context, userID, id string, d model.Difficulty) (*model.Problem, error) {
	return s.updateProblem(userID, id, func(p *model.Problem) { p.Difficulty = &d })
}

func (s *memoryStorage) UpdateProblemCategory(_ context.Context, userID, id string, category *string) (*model.Problem, error) {
	return s.updateProblem(userID, id, func(p *model.Problem) { p.Category = category })
}

func (s *memoryStorage) updateProblem(userID, id string, mutate func(*model.Problem)) (*model.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.problems[userID] {
		if s.problems[userID][i].ID == id {
			mutate(&s.problems[userID][i])
			s.problems[userID][i] = cloneProblem(s.problems[userID][i])
			p := cloneProblem(s.problems[userID][i])
			return &p, nil
		}
	}
	return nil, fmt.Errorf("memoryStorage.updateProblem %s: %w", id, common.ErrNotFound)
}

func (s *memoryStorage) DeleteProblem(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.problems[userID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		removed := list[i]
		s.problems[userID] = append(list[:i:i], list[i+1:]...)
		if stat, ok := s.stats[userID][removed.Platform]; ok {
			stat.Decrement(removed.Difficulty)
			stat.LastUpdated = time.Now().UTC()
			s.stats[userID][removed.Platform] = stat
		}
		return nil
	}
	return fmt.Errorf("memoryStorage.DeleteProblem %s: %w", id, common.ErrNotFound)
}

func (s *memoryStorage) DeleteProblemsByPlatform(_ context.Context, userID string, platform model.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.problems[userID][:0:0]
	for _, p := range s.problems[userID] {
		if p.Platform != platform {
			kept = append(kept, p)
		}
	}
	s.problems[userID] = kept
	delete(s.stats[userID], platform)
	return nil
}

func (s *memoryStorage) ClearUserData(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.problems, userID)
	delete(s.stats, userID)
	delete(s.recommendations, userID)
	return nil
}

func (s *memoryStorage) UpsertPlatformStat(_ context.Context, stat *model.PlatformStat) error {
	if stat.LastUpdated.IsZero() {
		stat.LastUpdated = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats[stat.UserID] == nil {
		s.stats[stat.UserID] = map[model.Platform]model.PlatformStat{}
	}
	s.stats[stat.UserID][stat.Platform] = *stat
	return nil
}

func (s *memoryStorage) GetPlatformStats(_ context.Context, userID string) ([]model.PlatformStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlatformStat, 0, len(s.stats[userID]))
	for _, st := range s.stats[userID] {
		out = append(out, st)
	}
	sortByPlatform(out, func(st model.PlatformStat) model.Platform { return st.Platform })
	return out, nil
}

func (s *memoryStorage) SaveCredential(_ context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, error) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentials[cred.UserID] == nil {
		s.credentials[cred.UserID] = map[model.Platform]model.PlatformCredential{}
	}
	saved, exists := s.credentials[cred.UserID][cred.Platform]
	if !exists {
		saved = model.PlatformCredential{ID: uuid.NewString(), UserID: cred.UserID, Platform: cred.Platform, CreatedAt: now}
	}
	saved.Username = cred.Username
	saved.UpdatedAt = now
	s.credentials[cred.UserID][cred.Platform] = saved
	return &saved, nil
}

func (s *memoryStorage) GetCredentials(_ context.Context, userID string) ([]model.PlatformCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlatformCredential, 0, len(s.credentials[userID]))
	for _, c := range s.credentials[userID] {
		out = append(out, c)
	}
	sortByPlatform(out, func(c model.PlatformCredential) model.Platform { return c.Platform })
	return out, nil
}

func (s *memoryStorage) TouchCredentialSync(_ context.Context, userID string, platform model.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[userID][platform]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	c.LastSyncAt = &now
	c.UpdatedAt = now
	s.credentials[userID][platform] = c
	return nil
}

func (s *memoryStorage) DeleteCredential(_ context.Context, userID string, platform model.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[userID][platform]; !ok {
		return fmt.Errorf("memoryStorage.DeleteCredential %s: %w", platform, common.ErrNotFound)
	}
	delete(s.credentials[userID], platform)
	return nil
}

func (s *memoryStorage) GetRecommendations(_ context.Context, userID string) ([]model.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Recommendation{}, s.recommendations[userID]...), nil
}

func (s *memoryStorage) ReplaceRecommendations(_ context.Context, userID string, recs []model.Recommendation) error {
	prepared := prepareRecommendations(userID, recs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations[userID] = prepared
	return nil
}
