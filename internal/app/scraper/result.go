package scraper

import (
	"context"
	"time"

	"prep_tracker/internal/domain/model"
)

type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// RecentItem is one problem a profile shows as recently attempted.
type RecentItem struct {
	Title      string
	Difficulty *model.Difficulty
	Timestamp  time.Time
	Status     string
	URL        string
}

// ProfileSummary is the normalized public profile of one platform account.
type ProfileSummary struct {
	TotalSolved  int
	EasySolved   int
	MediumSolved int
	HardSolved   int
	RecentItems  []RecentItem
}

// FetchResult carries exactly one of a profile, a not-found marker or a failure cause.
type FetchResult struct {
	Outcome Outcome
	Profile *ProfileSummary
	Err     error
}

func Found(p *ProfileSummary) FetchResult { return FetchResult{Outcome: OutcomeFound, Profile: p} }

func NotFound() FetchResult { return FetchResult{Outcome: OutcomeNotFound} }

func Failed(err error) FetchResult { return FetchResult{Outcome: OutcomeFailed, Err: err} }

// Client fetches a public profile summary from one platform.
// Implementations report every failure through the result and never panic.
type Client interface {
	Platform() model.Platform
	FetchProfile(ctx context.Context, handle string) FetchResult
}
