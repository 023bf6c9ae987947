package repository_test

import (
	"context"
	"testing"
	"time"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/logger"
	"prep_tracker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageConformance(t *testing.T) {
	runStorageConformance(t, func(t *testing.T) repository.Storage {
		return repository.NewMemoryStorage()
	})
}

func TestGormStorageConformance(t *testing.T) {
	runStorageConformance(t, func(t *testing.T) repository.Storage {
		return repository.NewGormStorage(testutil.SetupTestDB(t), logger.Nop())
	})
}

func runStorageConformance(t *testing.T, newStorage func(t *testing.T) repository.Storage) {
	tests := []struct {
		name string
		run  func(t *testing.T, s repository.Storage)
	}{
		{"problems are listed newest first per user", testListProblems},
		{"recent problems respect the limit", testRecentProblems},
		{"difficulty and category updates", testUpdateProblem},
		{"stored problems share no pointers with callers", testProblemValueSemantics},
		{"delete decrements the matching aggregate bucket", testDeleteDecrements},
		{"delete never takes an aggregate below zero", testDeleteFloorsAtZero},
		{"delete without aggregate leaves stats empty", testDeleteWithoutAggregate},
		{"aggregate upsert overwrites wholesale", testUpsertAggregate},
		{"delete by platform", testDeleteByPlatform},
		{"clear all is scoped to one user", testClearUserData},
		{"credentials upsert by platform", testCredentials},
		{"recommendations are replaced as a set", testRecommendations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, newStorage(t))
		})
	}
}

func difficulty(d model.Difficulty) *model.Difficulty { return &d }

func str(s string) *string { return &s }

func addProblem(t *testing.T, s repository.Storage, p model.Problem) model.Problem {
	t.Helper()
	require.NoError(t, s.CreateProblem(context.Background(), &p))
	require.NotEmpty(t, p.ID)
	return p
}

func statFor(t *testing.T, s repository.Storage, userID string, platform model.Platform) (model.PlatformStat, bool) {
	t.Helper()
	stats, err := s.GetPlatformStats(context.Background(), userID)
	require.NoError(t, err)
	for _, st := range stats {
		if st.Platform == platform {
			return st, true
		}
	}
	return model.PlatformStat{}, false
}

func testListProblems(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	addProblem(t, s, model.Problem{UserID: "alice", Name: "Two Sum", Platform: model.PlatformLeetCode, CreatedAt: base})
	addProblem(t, s, model.Problem{UserID: "alice", Name: "Kadane", Platform: model.PlatformGFG, CreatedAt: base.Add(time.Hour), Tags: []string{"dp"}})
	addProblem(t, s, model.Problem{UserID: "bob", Name: "Other", Platform: model.PlatformTUF, CreatedAt: base})

	got, err := s.GetUserProblems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Kadane", got[0].Name)
	assert.Equal(t, []string{"dp"}, got[0].Tags)
	assert.Equal(t, "Two Sum", got[1].Name)
	assert.Equal(t, []string{}, got[1].Tags)
	assert.Nil(t, got[1].Difficulty)
	assert.False(t, got[1].SolvedAt.IsZero())

	none, err := s.GetUserProblems(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testRecentProblems(t *testing.T, s repository.Storage) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c", "d"} {
		addProblem(t, s, model.Problem{UserID: "alice", Name: name, Platform: model.PlatformOther, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	got, err := s.GetRecentProblems(context.Background(), "alice", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}

func testUpdateProblem(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	p := addProblem(t, s, model.Problem{UserID: "alice", Name: "Two Sum", Platform: model.PlatformLeetCode})

	updated, err := s.UpdateProblemDifficulty(ctx, "alice", p.ID, model.DifficultyHard)
	require.NoError(t, err)
	require.NotNil(t, updated.Difficulty)
	assert.Equal(t, model.DifficultyHard, *updated.Difficulty)

	updated, err = s.UpdateProblemCategory(ctx, "alice", p.ID, str("arrays"))
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "arrays", *updated.Category)

	updated, err = s.UpdateProblemCategory(ctx, "alice", p.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Category)

	_, err = s.UpdateProblemDifficulty(ctx, "bob", p.ID, model.DifficultyEasy)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func testProblemValueSemantics(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	p := addProblem(t, s, model.Problem{UserID: "alice", Name: "Two Sum", Platform: model.PlatformLeetCode,
		Difficulty: difficulty(model.DifficultyEasy), URL: str("https://leetcode.com/problems/two-sum/")})

	category := "arrays"
	updated, err := s.UpdateProblemCategory(ctx, "alice", p.ID, &category)
	require.NoError(t, err)
	category = "graphs"
	*updated.Category = "dp"
	*updated.Difficulty = model.DifficultyHard
	*updated.URL = "https://example.com"

	got, err := s.GetUserProblems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Category)
	assert.Equal(t, "arrays", *got[0].Category)
	assert.Equal(t, model.DifficultyEasy, *got[0].Difficulty)
	assert.Equal(t, "https://leetcode.com/problems/two-sum/", *got[0].URL)

	*got[0].Category = "strings"
	again, err := s.GetUserProblems(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "arrays", *again[0].Category)
}

func testDeleteDecrements(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{
		UserID: "alice", Platform: model.PlatformLeetCode, TotalSolved: 74, EasySolved: 30, MediumSolved: 34, HardSolved: 10,
	}))
	medium := addProblem(t, s, model.Problem{UserID: "alice", Name: "LRU Cache", Platform: model.PlatformLeetCode, Difficulty: difficulty(model.DifficultyMedium)})
	unclassified := addProblem(t, s, model.Problem{UserID: "alice", Name: "Mystery", Platform: model.PlatformLeetCode})

	require.NoError(t, s.DeleteProblem(ctx, "alice", medium.ID))
	st, ok := statFor(t, s, "alice", model.PlatformLeetCode)
	require.True(t, ok)
	assert.Equal(t, 73, st.TotalSolved)
	assert.Equal(t, 30, st.EasySolved)
	assert.Equal(t, 33, st.MediumSolved)
	assert.Equal(t, 10, st.HardSolved)

	require.NoError(t, s.DeleteProblem(ctx, "alice", unclassified.ID))
	st, _ = statFor(t, s, "alice", model.PlatformLeetCode)
	assert.Equal(t, 72, st.TotalSolved)
	assert.Equal(t, 33, st.MediumSolved)

	problems, err := s.GetUserProblems(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, problems)

	assert.ErrorIs(t, s.DeleteProblem(ctx, "alice", medium.ID), common.ErrNotFound)
}

func testDeleteFloorsAtZero(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{
		UserID: "alice", Platform: model.PlatformGFG, TotalSolved: 1, EasySolved: 1,
	}))
	a := addProblem(t, s, model.Problem{UserID: "alice", Name: "A", Platform: model.PlatformGFG, Difficulty: difficulty(model.DifficultyHard)})
	b := addProblem(t, s, model.Problem{UserID: "alice", Name: "B", Platform: model.PlatformGFG, Difficulty: difficulty(model.DifficultyHard)})

	require.NoError(t, s.DeleteProblem(ctx, "alice", a.ID))
	require.NoError(t, s.DeleteProblem(ctx, "alice", b.ID))

	st, ok := statFor(t, s, "alice", model.PlatformGFG)
	require.True(t, ok)
	assert.Equal(t, 0, st.TotalSolved)
	assert.Equal(t, 1, st.EasySolved)
	assert.Equal(t, 0, st.HardSolved)
}

func testDeleteWithoutAggregate(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	p := addProblem(t, s, model.Problem{UserID: "alice", Name: "Manual", Platform: model.PlatformOther, Difficulty: difficulty(model.DifficultyEasy)})
	require.NoError(t, s.DeleteProblem(ctx, "alice", p.ID))

	stats, err := s.GetPlatformStats(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func testUpsertAggregate(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: "alice", Platform: model.PlatformTUF, TotalSolved: 10, EasySolved: 10}))
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: "alice", Platform: model.PlatformLeetCode, TotalSolved: 5, HardSolved: 5}))
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: "alice", Platform: model.PlatformTUF, TotalSolved: 7, MediumSolved: 7}))

	stats, err := s.GetPlatformStats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, model.PlatformLeetCode, stats[0].Platform)
	assert.Equal(t, model.PlatformTUF, stats[1].Platform)
	assert.Equal(t, 7, stats[1].TotalSolved)
	assert.Equal(t, 0, stats[1].EasySolved)
	assert.Equal(t, 7, stats[1].MediumSolved)
	assert.False(t, stats[1].LastUpdated.IsZero())
}

func testDeleteByPlatform(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: "alice", Platform: model.PlatformGFG, TotalSolved: 3}))
	require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: "alice", Platform: model.PlatformLeetCode, TotalSolved: 4}))
	addProblem(t, s, model.Problem{UserID: "alice", Name: "G1", Platform: model.PlatformGFG})
	addProblem(t, s, model.Problem{UserID: "alice", Name: "L1", Platform: model.PlatformLeetCode})

	require.NoError(t, s.DeleteProblemsByPlatform(ctx, "alice", model.PlatformGFG))

	problems, err := s.GetUserProblems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "L1", problems[0].Name)

	_, ok := statFor(t, s, "alice", model.PlatformGFG)
	assert.False(t, ok)
	_, ok = statFor(t, s, "alice", model.PlatformLeetCode)
	assert.True(t, ok)
}

func testClearUserData(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	for _, user := range []string{"alice", "bob"} {
		addProblem(t, s, model.Problem{UserID: user, Name: "Two Sum", Platform: model.PlatformLeetCode})
		require.NoError(t, s.UpsertPlatformStat(ctx, &model.PlatformStat{UserID: user, Platform: model.PlatformLeetCode, TotalSolved: 9}))
		require.NoError(t, s.ReplaceRecommendations(ctx, user, []model.Recommendation{{ProblemName: "3Sum", Platform: model.PlatformLeetCode, Category: "arrays"}}))
	}

	require.NoError(t, s.ClearUserData(ctx, "alice"))

	problems, _ := s.GetUserProblems(ctx, "alice")
	stats, _ := s.GetPlatformStats(ctx, "alice")
	recs, _ := s.GetRecommendations(ctx, "alice")
	assert.Empty(t, problems)
	assert.Empty(t, stats)
	assert.Empty(t, recs)

	problems, _ = s.GetUserProblems(ctx, "bob")
	stats, _ = s.GetPlatformStats(ctx, "bob")
	recs, _ = s.GetRecommendations(ctx, "bob")
	assert.Len(t, problems, 1)
	assert.Len(t, stats, 1)
	assert.Len(t, recs, 1)
}

func testCredentials(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	first, err := s.SaveCredential(ctx, &model.PlatformCredential{UserID: "alice", Platform: model.PlatformGFG, Username: "old"})
	require.NoError(t, err)
	second, err := s.SaveCredential(ctx, &model.PlatformCredential{UserID: "alice", Platform: model.PlatformGFG, Username: "new"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new", second.Username)

	_, err = s.SaveCredential(ctx, &model.PlatformCredential{UserID: "alice", Platform: model.PlatformLeetCode, Username: "lc"})
	require.NoError(t, err)

	require.NoError(t, s.TouchCredentialSync(ctx, "alice", model.PlatformGFG))
	require.NoError(t, s.TouchCredentialSync(ctx, "alice", model.PlatformTUF))

	creds, err := s.GetCredentials(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, model.PlatformLeetCode, creds[0].Platform)
	assert.Nil(t, creds[0].LastSyncAt)
	assert.Equal(t, model.PlatformGFG, creds[1].Platform)
	assert.NotNil(t, creds[1].LastSyncAt)

	require.NoError(t, s.DeleteCredential(ctx, "alice", model.PlatformGFG))
	assert.ErrorIs(t, s.DeleteCredential(ctx, "alice", model.PlatformGFG), common.ErrNotFound)

	creds, err = s.GetCredentials(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func testRecommendations(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	require.NoError(t, s.ReplaceRecommendations(ctx, "alice", []model.Recommendation{
		{ProblemName: "Old", Platform: model.PlatformGFG, Category: "graphs", Score: 1},
	}))
	require.NoError(t, s.ReplaceRecommendations(ctx, "alice", []model.Recommendation{
		{ProblemName: "Low", Platform: model.PlatformLeetCode, Category: "arrays", Score: 20},
		{ProblemName: "High", Platform: model.PlatformLeetCode, Category: "trees", Score: 90, Difficulty: difficulty(model.DifficultyHard), Reason: str("weak area")},
	}))

	recs, err := s.GetRecommendations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "High", recs[0].ProblemName)
	assert.Equal(t, "alice", recs[0].UserID)
	assert.NotEmpty(t, recs[0].ID)
	require.NotNil(t, recs[0].Difficulty)
	assert.Equal(t, model.DifficultyHard, *recs[0].Difficulty)
	assert.Equal(t, "Low", recs[1].ProblemName)
}
