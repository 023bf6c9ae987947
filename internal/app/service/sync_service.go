package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"prep_tracker/internal/app/scraper"
	"prep_tracker/internal/common"
	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/domain/repository"
	"prep_tracker/internal/platform/kv"
	"prep_tracker/internal/platform/logger"

	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
)

type SyncService struct {
	store       repository.Storage
	clients     map[model.Platform]scraper.Client
	locker      kv.Locker
	lockTTL     time.Duration
	concurrency int
	now         func() time.Time
	log         *logger.Logger
}

type SyncOptions struct {
	LockTTL time.Duration
	// Concurrency bounds how many platforms are fetched at once.
	Concurrency int
}

func NewSyncService(
	store repository.Storage,
	clients []scraper.Client,
	locker kv.Locker,
	opts SyncOptions,
	log *logger.Logger,
) *SyncService {
	byPlatform := make(map[model.Platform]scraper.Client, len(clients))
	for _, c := range clients {
		byPlatform[c.Platform()] = c
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 5 * time.Minute
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = len(model.SyncPlatforms)
	}
	return &SyncService{
		store:       store,
		clients:     byPlatform,
		locker:      locker,
		lockTTL:     opts.LockTTL,
		concurrency: opts.Concurrency,
		now:         time.Now,
		log:         log.With("service", "SyncService"),
	}
}

// SyncRequest maps platform ids to the user's handle on that platform.
type SyncRequest struct {
	Platforms map[string]string `json:"platforms"`
}

type PlatformSyncSummary struct {
	Platform      model.Platform `json:"platform"`
	DisplayName   string         `json:"display_name"`
	ProblemsAdded int            `json:"problems_added"`
	TotalSolved   int            `json:"total_solved"`
}

type SyncResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Synced  []PlatformSyncSummary `json:"synced"`
	Errors  []string              `json:"errors"`
}

// Sync pulls every requested profile and stores new solved problems and fresh aggregates.
// Per-platform failures are reported in the result; only malformed requests and
// storage or lock failures before fetching return an error.
func (s *SyncService) Sync(ctx context.Context, userID string, req SyncRequest) (*SyncResult, error) {
	handles, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, userID, handles)
}

// SyncSaved runs a sync with the user's stored platform credentials.
func (s *SyncService) SyncSaved(ctx context.Context, userID string) (*SyncResult, error) {
	creds, err := s.store.GetCredentials(ctx, userID)
	if err != nil {
		return nil, common.Errorf("load credentials: %w", err)
	}
	req := SyncRequest{Platforms: map[string]string{}}
	for _, c := range creds {
		if c.Platform.Syncable() {
			req.Platforms[string(c.Platform)] = c.Username
		}
	}
	if len(req.Platforms) == 0 {
		return nil, common.Errorf("no saved platform credentials: %w", common.ErrValidation)
	}
	return s.Sync(ctx, userID, req)
}

func (s *SyncService) validate(req SyncRequest) (map[model.Platform]string, error) {
	handles := make(map[model.Platform]string, len(req.Platforms))
	for key, handle := range req.Platforms {
		platform, ok := model.ParsePlatform(key)
		if !ok || !platform.Syncable() {
			return nil, common.Errorf("unsupported platform %q: %w", key, common.ErrValidation)
		}
		if _, ok := s.clients[platform]; !ok {
			return nil, common.Errorf("platform %q is not configured: %w", key, common.ErrValidation)
		}
		handle = strings.TrimSpace(handle)
		if handle == "" {
			continue
		}
		handles[platform] = handle
	}
	if len(handles) == 0 {
		return nil, common.Errorf("no platform handles supplied: %w", common.ErrValidation)
	}
	return handles, nil
}

func (s *SyncService) run(ctx context.Context, userID string, handles map[model.Platform]string) (*SyncResult, error) {
	release, err := s.locker.Acquire(ctx, "sync:"+userID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.GetUserProblems(ctx, userID)
	if err != nil {
		return nil, common.Errorf("load existing problems: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[model.DedupKey(p.Platform, p.Name)] = true
	}

	results := s.fetchAll(ctx, handles)

	out := &SyncResult{Synced: []PlatformSyncSummary{}, Errors: []string{}}
	added := 0
	for _, platform := range model.SyncPlatforms {
		handle, requested := handles[platform]
		if !requested {
			continue
		}
		res := results[platform]
		switch res.Outcome {
		case scraper.OutcomeFound:
			n, err := s.persist(ctx, userID, platform, res.Profile, known)
			added += n
			if err != nil {
				s.log.Error("failed to store synced profile", "platform", platform, "error", err)
				out.Errors = append(out.Errors, fmt.Sprintf("%s sync failed (%s): %v", platform.DisplayName(), platform, err))
				continue
			}
			out.Synced = append(out.Synced, PlatformSyncSummary{
				Platform:      platform,
				DisplayName:   platform.DisplayName(),
				ProblemsAdded: n,
				TotalSolved:   res.Profile.TotalSolved,
			})
			if err := s.store.TouchCredentialSync(ctx, userID, platform); err != nil {
				s.log.Warn("failed to record credential sync time", "platform", platform, "error", err)
			}
		case scraper.OutcomeNotFound:
			out.Errors = append(out.Errors, fmt.Sprintf("%s profile not found (%s: %s)", platform.DisplayName(), platform, handle))
		default:
			cause := res.Err
			if cause == nil {
				cause = fmt.Errorf("unknown error")
			}
			out.Errors = append(out.Errors, fmt.Sprintf("%s sync failed (%s): %v", platform.DisplayName(), platform, cause))
		}
	}

	out.Success = len(out.Synced) > 0
	out.Message = fmt.Sprintf("Sync complete. Added %d new problems.", added)
	s.log.Info("sync finished", "user", userID, "synced", len(out.Synced), "errors", len(out.Errors), "added", added)
	return out, nil
}

func (s *SyncService) fetchAll(ctx context.Context, handles map[model.Platform]string) map[model.Platform]scraper.FetchResult {
	var mu sync.Mutex
	results := make(map[model.Platform]scraper.FetchResult, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for platform, handle := range handles {
		client := s.clients[platform]
		g.Go(func() error {
			res := fetchSafely(gctx, client, handle)
			mu.Lock()
			results[platform] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func fetchSafely(ctx context.Context, client scraper.Client, handle string) (res scraper.FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = scraper.Failed(fmt.Errorf("client panic: %v", r))
		}
	}()
	res = client.FetchProfile(ctx, handle)
	if res.Outcome == scraper.OutcomeFound && res.Profile == nil {
		res = scraper.Failed(fmt.Errorf("client returned no profile"))
	}
	return res
}

// persist overwrites the platform aggregate, then stores unseen solved items.
// If the aggregate cannot be written no records are created. The returned count is
// the number of records actually stored, even when a later insert fails.
// known is updated in place so later platforms and items see the new keys.
func (s *SyncService) persist(ctx context.Context, userID string, platform model.Platform, profile *scraper.ProfileSummary, known map[string]bool) (int, error) {
	err := s.store.UpsertPlatformStat(ctx, &model.PlatformStat{
		UserID:       userID,
		Platform:     platform,
		TotalSolved:  profile.TotalSolved,
		EasySolved:   profile.EasySolved,
		MediumSolved: profile.MediumSolved,
		HardSolved:   profile.HardSolved,
		LastUpdated:  s.now().UTC(),
	})
	if err != nil {
		return 0, err
	}

	added := 0
	for _, item := range profile.RecentItems {
		if !isSolvedStatus(item.Status) {
			continue
		}
		name := strings.TrimSpace(item.Title)
		key := model.DedupKey(platform, name)
		if name == "" || known[key] {
			continue
		}

		solvedAt := item.Timestamp
		if solvedAt.IsZero() {
			solvedAt = s.now().UTC()
		}
		p := &model.Problem{
			UserID:     userID,
			Name:       name,
			Platform:   platform,
			Difficulty: item.Difficulty,
			Tags:       []string{},
			URL:        problemURL(platform, name, item.URL),
			SolvedAt:   solvedAt,
		}
		if err := s.store.CreateProblem(ctx, p); err != nil {
			return added, err
		}
		known[key] = true
		added++
	}
	return added, nil
}

func isSolvedStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "solved", "accepted", "ac":
		return true
	}
	return false
}

func problemURL(platform model.Platform, name, supplied string) *string {
	if supplied != "" {
		return &supplied
	}
	s := slug.Make(name)
	if s == "" {
		return nil
	}
	var u string
	switch platform {
	case model.PlatformLeetCode:
		u = "https://leetcode.com/problems/" + s + "/"
	case model.PlatformGFG:
		u = "https://practice.geeksforgeeks.org/problems/" + s + "/"
	default:
		return nil
	}
	return &u
}
