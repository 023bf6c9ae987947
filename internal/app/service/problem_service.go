package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"time"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/logger"
)

type ProblemService struct {
	store repository.Storage
	log   *logger.Logger
}

func NewProblemService(store repository.Storage, log *logger.Logger) *ProblemService {
	return &ProblemService{store: store, log: log.With("service", "ProblemService")}
}

type CreateProblemRequest struct {
	Name       string     `json:"name"`
	Platform   string     `json:"platform"`
	Difficulty string     `json:"difficulty"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	URL        string     `json:"url"`
	SolvedAt   *time.Time `json:"solved_at,omitempty"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req CreateProblemRequest) (*model.Problem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.Errorf("problem name is required: %w", common.ErrValidation)
	}
	platform, ok := model.ParsePlatform(req.Platform)
	if !ok {
		return nil, common.Errorf("unknown platform %q: %w", req.Platform, common.ErrValidation)
	}

	p := &model.Problem{
		UserID:   userID,
		Name:     name,
		Platform: platform,
		Category: model.NormalizeCategory(req.Category),
		Tags:     cleanTags(req.Tags),
	}
	if strings.TrimSpace(req.Difficulty) != "" {
		d, ok := model.ParseDifficulty(req.Difficulty)
		if !ok {
			return nil, common.Errorf("difficulty must be easy, medium or hard: %w", common.ErrValidation)
		}
		p.Difficulty = &d
	}
	if u := strings.TrimSpace(req.URL); u != "" {
		p.URL = &u
	}
	if req.SolvedAt != nil {
		p.SolvedAt = req.SolvedAt.UTC()
	}

	if err := s.store.CreateProblem(ctx, p); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	return p, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, userID string) ([]model.Problem, error) {
	return s.store.GetUserProblems(ctx, userID)
}

func (s *ProblemService) UpdateDifficulty(ctx context.Context, userID, id, difficulty string) (*model.Problem, error) {
	d, ok := model.ParseDifficulty(difficulty)
	if !ok {
		return nil, common.Errorf("difficulty must be easy, medium or hard: %w", common.ErrValidation)
	}
	return s.store.UpdateProblemDifficulty(ctx, userID, id, d)
}

func (s *ProblemService) UpdateCategory(ctx context.Context, userID, id, category string) (*model.Problem, error) {
	return s.store.UpdateProblemCategory(ctx, userID, id, model.NormalizeCategory(category))
}

func (s *ProblemService) DeleteProblem(ctx context.Context, userID, id string) error {
	return s.store.DeleteProblem(ctx, userID, id)
}

func (s *ProblemService) DeleteByPlatform(ctx context.Context, userID, platform string) error {
	p, ok := model.ParsePlatform(platform)
	if !ok {
		return common.Errorf("unknown platform %q: %w", platform, common.ErrValidation)
	}
	return s.store.DeleteProblemsByPlatform(ctx, userID, p)
}

func (s *ProblemService) ClearAll(ctx context.Context, userID string) error {
	if err := s.store.ClearUserData(ctx, userID); err != nil {
		return err
	}
	s.log.Info("cleared all user data", "user", userID)
	return nil
}

var exportHeader = []string{"id", "name", "platform", "difficulty", "category", "url", "solved"}

// ExportCSV renders the user's problems as a UTF-8 CSV with a BOM and CRLF line endings.
func (s *ProblemService) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	problems, err := s.store.GetUserProblems(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, p := range problems {
		row := []string{p.ID, p.Name, string(p.Platform), "", "", "", p.SolvedAt.UTC().Format(time.RFC3339)}
		if p.Difficulty != nil {
			row[3] = string(*p.Difficulty)
		}
		if p.Category != nil {
			row[4] = *p.Category
		}
		if p.URL != nil {
			row[5] = *p.URL
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
