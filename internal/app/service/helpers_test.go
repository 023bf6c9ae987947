package service

import (
	"context"
	"sync/atomic"
	"testing"

	"prep_tracker/internal/app/scraper"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/logger"
	"prep_tracker/internal/testutil"
)

type fakeClient struct {
	platform model.Platform
	results  map[string]scraper.FetchResult
	panics   bool
	calls    atomic.Int32
}

func (f *fakeClient) Platform() model.Platform { return f.platform }

func (f *fakeClient) FetchProfile(_ context.Context, handle string) scraper.FetchResult {
	f.calls.Add(1)
	if f.panics {
		panic("selector exploded")
	}
	if res, ok := f.results[handle]; ok {
		return res
	}
	return scraper.NotFound()
}

// storages runs fn once per Storage implementation.
func storages(t *testing.T, fn func(t *testing.T, store repository.Storage)) {
	t.Run("memory", func(t *testing.T) { fn(t, repository.NewMemoryStorage()) })
	t.Run("gorm", func(t *testing.T) {
		fn(t, repository.NewGormStorage(testutil.SetupTestDB(t), logger.Nop()))
	})
}

func difficultyPtr(d model.Difficulty) *model.Difficulty { return &d }

func strPtr(s string) *string { return &s }
