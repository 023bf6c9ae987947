package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"prep_tracker/internal/app/scraper"
	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/kv"
	"prep_tracker/internal/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leetCodeProfile() *scraper.ProfileSummary {
	ts := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	return &scraper.ProfileSummary{
		TotalSolved: 74, EasySolved: 40, MediumSolved: 30, HardSolved: 4,
		RecentItems: []scraper.RecentItem{
			{Title: "Two Sum", Status: "Accepted", Timestamp: ts},
			{Title: " two sum ", Status: "Accepted", Timestamp: ts.Add(time.Minute)},
			{Title: "LRU Cache", Status: "Wrong Answer", Timestamp: ts},
			{Title: "Valid Parentheses", Status: "accepted"},
		},
	}
}

func gfgProfile() *scraper.ProfileSummary {
	return &scraper.ProfileSummary{
		TotalSolved: 25, EasySolved: 12, MediumSolved: 9, HardSolved: 4,
		RecentItems: []scraper.RecentItem{
			{Title: "Kadane's Algorithm", Status: "Solved", URL: "https://www.geeksforgeeks.org/problems/kadanes-algorithm/1"},
			{Title: "Two Sum", Status: "Solved"},
		},
	}
}

type syncFixture struct {
	svc      *SyncService
	store    repository.Storage
	leetcode *fakeClient
	gfg      *fakeClient
	tuf      *fakeClient
}

func newSyncFixture(store repository.Storage) *syncFixture {
	f := &syncFixture{
		store: store,
		leetcode: &fakeClient{platform: model.PlatformLeetCode, results: map[string]scraper.FetchResult{
			"validuser": scraper.Found(leetCodeProfile()),
		}},
		gfg: &fakeClient{platform: model.PlatformGFG, results: map[string]scraper.FetchResult{
			"gfguser": scraper.Found(gfgProfile()),
		}},
		tuf: &fakeClient{platform: model.PlatformTUF, results: map[string]scraper.FetchResult{
			"tufuser": scraper.Found(&scraper.ProfileSummary{TotalSolved: 22, EasySolved: 13, MediumSolved: 7, HardSolved: 2}),
			"flaky":   scraper.Failed(context.DeadlineExceeded),
		}},
	}
	f.svc = NewSyncService(store, []scraper.Client{f.leetcode, f.gfg, f.tuf}, kv.NewLocalLocker(), SyncOptions{}, logger.Nop())
	return f
}

func TestSyncPartialFailure(t *testing.T) {
	storages(t, func(t *testing.T, store repository.Storage) {
		f := newSyncFixture(store)

		res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{
			"leetcode": "validuser",
			"gfg":      "ghost-user-404",
		}})

		require.NoError(t, err)
		assert.True(t, res.Success)
		require.Len(t, res.Synced, 1)
		assert.Equal(t, model.PlatformLeetCode, res.Synced[0].Platform)
		assert.Equal(t, 2, res.Synced[0].ProblemsAdded)
		assert.Equal(t, 74, res.Synced[0].TotalSolved)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "gfg")
		assert.Contains(t, res.Errors[0], "not found")
		assert.Equal(t, "Sync complete. Added 2 new problems.", res.Message)

		stats, err := store.GetPlatformStats(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, model.PlatformLeetCode, stats[0].Platform)
	})
}

func TestSyncIsIdempotent(t *testing.T) {
	storages(t, func(t *testing.T, store repository.Storage) {
		f := newSyncFixture(store)
		ctx := context.Background()
		req := SyncRequest{Platforms: map[string]string{"leetcode": "validuser", "gfg": "gfguser", "tuf": "tufuser"}}

		first, err := f.svc.Sync(ctx, "u1", req)
		require.NoError(t, err)
		assert.Equal(t, "Sync complete. Added 4 new problems.", first.Message)
		before, err := store.GetPlatformStats(ctx, "u1")
		require.NoError(t, err)

		second, err := f.svc.Sync(ctx, "u1", req)
		require.NoError(t, err)
		assert.True(t, second.Success)
		assert.Empty(t, second.Errors)
		for _, s := range second.Synced {
			assert.Zero(t, s.ProblemsAdded, s.Platform)
		}
		after, err := store.GetPlatformStats(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, after, len(before))
		for i := range before {
			assert.Equal(t, before[i].Platform, after[i].Platform)
			assert.Equal(t, before[i].TotalSolved, after[i].TotalSolved)
			assert.Equal(t, before[i].EasySolved, after[i].EasySolved)
			assert.Equal(t, before[i].MediumSolved, after[i].MediumSolved)
			assert.Equal(t, before[i].HardSolved, after[i].HardSolved)
		}

		problems, err := store.GetUserProblems(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, problems, 4)
		seen := map[string]bool{}
		for _, p := range problems {
			key := model.DedupKey(p.Platform, p.Name)
			assert.False(t, seen[key], "duplicate %s", key)
			seen[key] = true
		}
	})
}

func TestSyncRecordsShape(t *testing.T) {
	f := newSyncFixture(repository.NewMemoryStorage())
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser", "gfg": "gfguser"}})
	require.NoError(t, err)

	problems, err := f.store.GetUserProblems(ctx, "u1")
	require.NoError(t, err)
	byKey := map[string]model.Problem{}
	for _, p := range problems {
		byKey[model.DedupKey(p.Platform, p.Name)] = p
	}

	twoSum := byKey["leetcode-two sum"]
	require.NotNil(t, twoSum.URL)
	assert.Equal(t, "https://leetcode.com/problems/two-sum/", *twoSum.URL)
	assert.Nil(t, twoSum.Difficulty)
	assert.Nil(t, twoSum.Category)
	assert.Empty(t, twoSum.Tags)
	assert.Equal(t, time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC), twoSum.SolvedAt)

	kadane := byKey["gfg-kadane's algorithm"]
	require.NotNil(t, kadane.URL)
	assert.Equal(t, "https://www.geeksforgeeks.org/problems/kadanes-algorithm/1", *kadane.URL)

	gfgTwoSum := byKey["gfg-two sum"]
	require.NotNil(t, gfgTwoSum.URL)
	assert.Equal(t, "https://practice.geeksforgeeks.org/problems/two-sum/", *gfgTwoSum.URL)

	_, hasLRU := byKey["leetcode-lru cache"]
	assert.False(t, hasLRU, "non-accepted submissions are not stored")
}

func TestSyncSkipsProblemsAlreadyTracked(t *testing.T) {
	store := repository.NewMemoryStorage()
	require.NoError(t, store.CreateProblem(context.Background(), &model.Problem{UserID: "u1", Name: "TWO SUM", Platform: model.PlatformLeetCode}))
	f := newSyncFixture(store)

	res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser"}})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced[0].ProblemsAdded)
}

func TestSyncValidation(t *testing.T) {
	tests := []struct {
		name      string
		platforms map[string]string
	}{
		{"nil map", nil},
		{"empty map", map[string]string{}},
		{"blank handles", map[string]string{"leetcode": "  "}},
		{"unknown platform", map[string]string{"codeforces": "tourist", "leetcode": "validuser"}},
		{"manual platform", map[string]string{"other": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(repository.NewMemoryStorage())

			res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: tt.platforms})

			assert.Nil(t, res)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Zero(t, f.leetcode.calls.Load())
		})
	}
}

func TestSyncAllPlatformsFail(t *testing.T) {
	f := newSyncFixture(repository.NewMemoryStorage())

	res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{"gfg": "nobody", "tuf": "flaky"}})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Synced)
	require.Len(t, res.Errors, 2)
	assert.True(t, strings.HasPrefix(res.Errors[0], "GeeksforGeeks profile not found"))
	assert.Contains(t, res.Errors[1], "TUF+ sync failed (tuf)")
	assert.Contains(t, res.Errors[1], context.DeadlineExceeded.Error())
}

// failingStatStore fails every aggregate write.
type failingStatStore struct {
	repository.Storage
}

func (failingStatStore) UpsertPlatformStat(context.Context, *model.PlatformStat) error {
	return errors.New("db down")
}

func TestSyncAggregateFailureStoresNothing(t *testing.T) {
	store := failingStatStore{Storage: repository.NewMemoryStorage()}
	f := newSyncFixture(store)

	res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser"}})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Synced)
	assert.Equal(t, []string{"LeetCode sync failed (leetcode): db down"}, res.Errors)
	assert.Equal(t, "Sync complete. Added 0 new problems.", res.Message)

	problems, err := store.GetUserProblems(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestSyncRecoversFromClientPanic(t *testing.T) {
	f := newSyncFixture(repository.NewMemoryStorage())
	f.gfg.panics = true

	res, err := f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser", "gfg": "gfguser"}})

	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "client panic")
}

func TestSyncRejectsConcurrentRunForSameUser(t *testing.T) {
	locker := kv.NewLocalLocker()
	f := newSyncFixture(repository.NewMemoryStorage())
	f.svc.locker = locker

	release, err := locker.Acquire(context.Background(), "sync:u1", time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.svc.Sync(context.Background(), "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser"}})
	assert.ErrorIs(t, err, common.ErrSyncInProgress)
	assert.Zero(t, f.leetcode.calls.Load())

	_, err = f.svc.Sync(context.Background(), "u2", SyncRequest{Platforms: map[string]string{"leetcode": "validuser"}})
	assert.NoError(t, err)
}

func TestSyncSaved(t *testing.T) {
	storages(t, func(t *testing.T, store repository.Storage) {
		f := newSyncFixture(store)
		ctx := context.Background()

		_, err := f.svc.SyncSaved(ctx, "u1")
		assert.ErrorIs(t, err, common.ErrValidation)

		_, err = store.SaveCredential(ctx, &model.PlatformCredential{UserID: "u1", Platform: model.PlatformTUF, Username: "tufuser"})
		require.NoError(t, err)

		res, err := f.svc.SyncSaved(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, res.Synced, 1)
		assert.Equal(t, 22, res.Synced[0].TotalSolved)

		creds, err := store.GetCredentials(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, creds, 1)
		assert.NotNil(t, creds[0].LastSyncAt)
	})
}

func TestSyncThenStatsDoesNotDoubleCount(t *testing.T) {
	storages(t, func(t *testing.T, store repository.Storage) {
		f := newSyncFixture(store)
		ctx := context.Background()
		problems := NewProblemService(store, logger.Nop())
		for _, name := range []string{"Manual A", "Manual B", "Manual C"} {
			_, err := problems.CreateProblem(ctx, "u1", CreateProblemRequest{Name: name, Platform: "leetcode", Difficulty: "hard", Category: "graph"})
			require.NoError(t, err)
		}

		_, err := f.svc.Sync(ctx, "u1", SyncRequest{Platforms: map[string]string{"leetcode": "validuser"}})
		require.NoError(t, err)

		stats, err := NewStatsService(store, logger.Nop()).GetStats(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, stats.PlatformStats, 1)
		assert.Equal(t, 74, stats.PlatformStats[0].Count)
		assert.Equal(t, 74, stats.Total)
		assert.Equal(t, 4, stats.Hard)
		assert.Equal(t, []model.CategoryCount{{Category: "graphs", Count: 3}}, stats.CategoryStats)
	})
}

func TestProblemURL(t *testing.T) {
	assert.Equal(t, "https://leetcode.com/problems/valid-parentheses/", *problemURL(model.PlatformLeetCode, "Valid Parentheses", ""))
	assert.Nil(t, problemURL(model.PlatformTUF, "Valid Parentheses", ""))
	assert.Nil(t, problemURL(model.PlatformLeetCode, "!!!", ""))
	assert.Equal(t, "https://x/y", *problemURL(model.PlatformTUF, "Anything", "https://x/y"))
}
