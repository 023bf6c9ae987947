package repository

import (
	"context"

	"prep_tracker/internal/domain/model"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, p *model.Problem) error
	// GetUserProblems returns the user's problems, newest first.
	GetUserProblems(ctx context.Context, userID string) ([]model.Problem, error)
	GetRecentProblems(ctx context.Context, userID string, limit int) ([]model.Problem, error)
	UpdateProblemDifficulty(ctx context.Context, userID, id string, d model.Difficulty) (*model.Problem, error)
	UpdateProblemCategory(ctx context.Context, userID, id string, category *string) (*model.Problem, error)
	// DeleteProblem also decrements the platform aggregate, if one exists.
	DeleteProblem(ctx context.Context, userID, id string) error
	// DeleteProblemsByPlatform removes the platform's problems and its aggregate.
	DeleteProblemsByPlatform(ctx context.Context, userID string, platform model.Platform) error
	// ClearUserData removes problems, aggregates and recommendations.
	ClearUserData(ctx context.Context, userID string) error
}

type PlatformStatRepository interface {
	UpsertPlatformStat(ctx context.Context, stat *model.PlatformStat) error
	GetPlatformStats(ctx context.Context, userID string) ([]model.PlatformStat, error)
}

type CredentialRepository interface {
	SaveCredential(ctx context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, error)
	GetCredentials(ctx context.Context, userID string) ([]model.PlatformCredential, error)
	TouchCredentialSync(ctx context.Context, userID string, platform model.Platform) error
	DeleteCredential(ctx context.Context, userID string, platform model.Platform) error
}

type RecommendationRepository interface {
	GetRecommendations(ctx context.Context, userID string) ([]model.Recommendation, error)
	ReplaceRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error
}

// Storage is everything the services persist.
type Storage interface {
	ProblemRepository
	PlatformStatRepository
	CredentialRepository
	RecommendationRepository
}
