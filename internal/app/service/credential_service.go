package service

import (
	"context"
	"strings"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
)

type CredentialService struct {
	store repository.Storage
}

func NewCredentialService(store repository.Storage) *CredentialService {
	return &CredentialService{store: store}
}

type SaveCredentialRequest struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
}

func (s *CredentialService) Save(ctx context.Context, userID string, req SaveCredentialRequest) (*model.PlatformCredential, error) {
	platform, ok := model.ParsePlatform(req.Platform)
	if !ok || !platform.Syncable() {
		return nil, common.Errorf("unsupported platform %q: %w", req.Platform, common.ErrValidation)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, common.Errorf("username is required: %w", common.ErrValidation)
	}
	return s.store.SaveCredential(ctx, &model.PlatformCredential{UserID: userID, Platform: platform, Username: username})
}

func (s *CredentialService) List(ctx context.Context, userID string) ([]model.PlatformCredential, error) {
	return s.store.GetCredentials(ctx, userID)
}

func (s *CredentialService) Delete(ctx context.Context, userID, platform string) error {
	p, ok := model.ParsePlatform(platform)
	if !ok {
		return common.Errorf("unknown platform %q: %w", platform, common.ErrValidation)
	}
	return s.store.DeleteCredential(ctx, userID, p)
}
