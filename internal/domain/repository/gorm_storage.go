package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/platform/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type problemRow struct {
	ID         string  `gorm:"primaryKey;size:36"`
	UserID     string  `gorm:"index;not null"`
	Name       string  `gorm:"not null"`
	Platform   string  `gorm:"index;not null"`
	Difficulty *string `gorm:"size:16"`
	Category   *string
	Tags       datatypes.JSON
	URL        *string
	SolvedAt   time.Time
	CreatedAt  time.Time `gorm:"index"`
}

func (problemRow) TableName() string { return "problems" }

type platformStatRow struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       string `gorm:"uniqueIndex:idx_platform_stats_user_platform;not null"`
	Platform     string `gorm:"uniqueIndex:idx_platform_stats_user_platform;not null"`
	TotalSolved  int    `gorm:"not null;default:0"`
	EasySolved   int    `gorm:"not null;default:0"`
	MediumSolved int    `gorm:"not null;default:0"`
	HardSolved   int    `gorm:"not null;default:0"`
	LastUpdated  time.Time
}

func (platformStatRow) TableName() string { return "platform_stats" }

type credentialRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"uniqueIndex:idx_platform_credentials_user_platform;not null"`
	Platform   string `gorm:"uniqueIndex:idx_platform_credentials_user_platform;not null"`
	Username   string `gorm:"not null"`
	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (credentialRow) TableName() string { return "platform_credentials" }

type recommendationRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;not null"`
	ProblemName string `gorm:"not null"`
	Platform    string `gorm:"not null"`
	Difficulty  *string
	Category    string `gorm:"not null"`
	Reason      *string
	URL         *string
	Score       int `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

func (recommendationRow) TableName() string { return "recommendations" }

// Migrate creates or updates the tables used by the gorm storage.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&problemRow{}, &platformStatRow{}, &credentialRow{}, &recommendationRow{})
}

type gormStorage struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStorage(db *gorm.DB, baseLog *logger.Logger) Storage {
	return &gormStorage{db: db, log: baseLog.With("repo", "GormStorage")}
}

func (r *gormStorage) CreateProblem(ctx context.Context, p *model.Problem) error {
	prepareProblem(p)
	row, err := toProblemRow(p)
	if err != nil {
		return fmt.Errorf("gormStorage.CreateProblem: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("gormStorage.CreateProblem: %w", err)
	}
	return nil
}

func (r *gormStorage) GetUserProblems(ctx context.Context, userID string) ([]model.Problem, error) {
	return r.listProblems(ctx, userID, 0)
}

func (r *gormStorage) GetRecentProblems(ctx context.Context, userID string, limit int) ([]model.Problem, error) {
	return r.listProblems(ctx, userID, limit)
}

func (r *gormStorage) listProblems(ctx context.Context, userID string, limit int) ([]model.Problem, error) {
	var rows []problemRow
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormStorage.listProblems: %w", err)
	}
	out := make([]model.Problem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *gormStorage) UpdateProblemDifficulty(ctx context.Context, userID, id string, d model.Difficulty) (*model.Problem, error) {
	return r.updateProblemColumn(ctx, userID, id, "difficulty", string(d))
}

func (r *gormStorage) UpdateProblemCategory(ctx context.Context, userID, id string, category *string) (*model.Problem, error) {
	if category == nil {
		return r.updateProblemColumn(ctx, userID, id, "category", gorm.Expr("NULL"))
	}
	return r.updateProblemColumn(ctx, userID, id, "category", *category)
}

func (r *gormStorage) updateProblemColumn(ctx context.Context, userID, id, column string, value interface{}) (*model.Problem, error) {
	var row problemRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&problemRow{}).Where("id = ? AND user_id = ?", id, userID).Update(column, value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("gormStorage.updateProblemColumn %s: %w", column, err)
	}
	p := row.toModel()
	return &p, nil
}

func (r *gormStorage) DeleteProblem(ctx context.Context, userID, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row problemRow
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&problemRow{}, "id = ?", row.ID).Error; err != nil {
			return err
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var stat platformStatRow
		err := q.Where("user_id = ? AND platform = ?", userID, row.Platform).First(&stat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		updated := stat.toModel()
		updated.Decrement(row.toModel().Difficulty)
		return tx.Model(&platformStatRow{}).Where("id = ?", stat.ID).Updates(map[string]interface{}{
			"total_solved":  updated.TotalSolved,
			"easy_solved":   updated.EasySolved,
			"medium_solved": updated.MediumSolved,
			"hard_solved":   updated.HardSolved,
			"last_updated":  time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("gormStorage.DeleteProblem %s: %w", id, err)
	}
	return nil
}

func (r *gormStorage) DeleteProblemsByPlatform(ctx context.Context, userID string, platform model.Platform) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND platform = ?", userID, string(platform)).Delete(&problemRow{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND platform = ?", userID, string(platform)).Delete(&platformStatRow{}).Error
	})
	if err != nil {
		return fmt.Errorf("gormStorage.DeleteProblemsByPlatform: %w", err)
	}
	return nil
}

func (r *gormStorage) ClearUserData(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&problemRow{}, &platformStatRow{}, &recommendationRow{}} {
			if err := tx.Where("user_id = ?", userID).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("gormStorage.ClearUserData: %w", err)
	}
	r.log.Debug("cleared user data", "user", userID)
	return nil
}

func (r *gormStorage) UpsertPlatformStat(ctx context.Context, stat *model.PlatformStat) error {
	if stat.LastUpdated.IsZero() {
		stat.LastUpdated = time.Now().UTC()
	}
	row := platformStatRow{
		UserID:       stat.UserID,
		Platform:     string(stat.Platform),
		TotalSolved:  stat.TotalSolved,
		EasySolved:   stat.EasySolved,
		MediumSolved: stat.MediumSolved,
		HardSolved:   stat.HardSolved,
		LastUpdated:  stat.LastUpdated,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_solved", "easy_solved", "medium_solved", "hard_solved", "last_updated"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("gormStorage.UpsertPlatformStat: %w", err)
	}
	return nil
}

func (r *gormStorage) GetPlatformStats(ctx context.Context, userID string) ([]model.PlatformStat, error) {
	var rows []platformStatRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormStorage.GetPlatformStats: %w", err)
	}
	out := make([]model.PlatformStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	sortByPlatform(out, func(st model.PlatformStat) model.Platform { return st.Platform })
	return out, nil
}

func (r *gormStorage) SaveCredential(ctx context.Context, cred *model.PlatformCredential) (*model.PlatformCredential, error) {
	now := time.Now().UTC()
	row := credentialRow{
		ID:        uuid.NewString(),
		UserID:    cred.UserID,
		Platform:  string(cred.Platform),
		Username:  cred.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var saved credentialRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND platform = ?", cred.UserID, string(cred.Platform)).First(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("gormStorage.SaveCredential: %w", err)
	}
	out := saved.toModel()
	return &out, nil
}

func (r *gormStorage) GetCredentials(ctx context.Context, userID string) ([]model.PlatformCredential, error) {
	var rows []credentialRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormStorage.GetCredentials: %w", err)
	}
	out := make([]model.PlatformCredential, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	sortByPlatform(out, func(c model.PlatformCredential) model.Platform { return c.Platform })
	return out, nil
}

func (r *gormStorage) TouchCredentialSync(ctx context.Context, userID string, platform model.Platform) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&credentialRow{}).
		Where("user_id = ? AND platform = ?", userID, string(platform)).
		Updates(map[string]interface{}{"last_sync_at": now, "updated_at": now}).Error
	if err != nil {
		return fmt.Errorf("gormStorage.TouchCredentialSync: %w", err)
	}
	return nil
}

func (r *gormStorage) DeleteCredential(ctx context.Context, userID string, platform model.Platform) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND platform = ?", userID, string(platform)).Delete(&credentialRow{})
	if res.Error != nil {
		return fmt.Errorf("gormStorage.DeleteCredential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("gormStorage.DeleteCredential %s: %w", platform, common.ErrNotFound)
	}
	return nil
}

func (r *gormStorage) GetRecommendations(ctx context.Context, userID string) ([]model.Recommendation, error) {
	var rows []recommendationRow
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("score DESC").Order("problem_name ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormStorage.GetRecommendations: %w", err)
	}
	out := make([]model.Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *gormStorage) ReplaceRecommendations(ctx context.Context, userID string, recs []model.Recommendation) error {
	prepared := prepareRecommendations(userID, recs)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&recommendationRow{}).Error; err != nil {
			return err
		}
		if len(prepared) == 0 {
			return nil
		}
		rows := make([]recommendationRow, 0, len(prepared))
		for _, rec := range prepared {
			rows = append(rows, toRecommendationRow(rec))
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("gormStorage.ReplaceRecommendations: %w", err)
	}
	return nil
}

func toProblemRow(p *model.Problem) (problemRow, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return problemRow{}, err
	}
	return problemRow{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Platform:   string(p.Platform),
		Difficulty: difficultyToString(p.Difficulty),
		Category:   p.Category,
		Tags:       datatypes.JSON(tags),
		URL:        p.URL,
		SolvedAt:   p.SolvedAt,
		CreatedAt:  p.CreatedAt,
	}, nil
}

func (row problemRow) toModel() model.Problem {
	tags := []string{}
	if len(row.Tags) > 0 {
		_ = json.Unmarshal(row.Tags, &tags)
	}
	return model.Problem{
		ID:         row.ID,
		UserID:     row.UserID,
		Name:       row.Name,
		Platform:   model.Platform(row.Platform),
		Difficulty: stringToDifficulty(row.Difficulty),
		Category:   row.Category,
		Tags:       tags,
		URL:        row.URL,
		SolvedAt:   row.SolvedAt,
		CreatedAt:  row.CreatedAt,
	}
}

func (row platformStatRow) toModel() model.PlatformStat {
	return model.PlatformStat{
		UserID:       row.UserID,
		Platform:     model.Platform(row.Platform),
		TotalSolved:  row.TotalSolved,
		EasySolved:   row.EasySolved,
		MediumSolved: row.MediumSolved,
		HardSolved:   row.HardSolved,
		LastUpdated:  row.LastUpdated,
	}
}

func (row credentialRow) toModel() model.PlatformCredential {
	return model.PlatformCredential{
		ID:         row.ID,
		UserID:     row.UserID,
		Platform:   model.Platform(row.Platform),
		Username:   row.Username,
		LastSyncAt: row.LastSyncAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func toRecommendationRow(r model.Recommendation) recommendationRow {
	return recommendationRow{
		ID:          r.ID,
		UserID:      r.UserID,
		ProblemName: r.ProblemName,
		Platform:    string(r.Platform),
		Difficulty:  difficultyToString(r.Difficulty),
		Category:    r.Category,
		Reason:      r.Reason,
		URL:         r.URL,
		Score:       r.Score,
		CreatedAt:   r.CreatedAt,
	}
}

func (row recommendationRow) toModel() model.Recommendation {
	return model.Recommendation{
		ID:          row.ID,
		UserID:      row.UserID,
		ProblemName: row.ProblemName,
		Platform:    model.Platform(row.Platform),
		Difficulty:  stringToDifficulty(row.Difficulty),
		Category:    row.Category,
		Reason:      row.Reason,
		URL:         row.URL,
		Score:       row.Score,
		CreatedAt:   row.CreatedAt,
	}
}

func difficultyToString(d *model.Difficulty) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}

func stringToDifficulty(s *string) *model.Difficulty {
	if s == nil {
		return nil
	}
	d, ok := model.ParseDifficulty(*s)
	if !ok {
		return nil
	}
	return &d
}
