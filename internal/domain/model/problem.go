package model

import (
	"strings"
	"time"
)

type Difficulty string
type Platform string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	PlatformLeetCode Platform = "leetcode"
	PlatformGFG      Platform = "gfg"
	PlatformTUF      Platform = "tuf"
	PlatformOther    Platform = "other"
)

// Platforms lists every platform in display order.
var Platforms = []Platform{PlatformLeetCode, PlatformGFG, PlatformTUF, PlatformOther}

// SyncPlatforms lists the platforms that have a profile client.
var SyncPlatforms = []Platform{PlatformLeetCode, PlatformGFG, PlatformTUF}

func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, true
		}
	}
	return "", false
}

func (p Platform) Syncable() bool {
	for _, known := range SyncPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) DisplayName() string {
	switch p {
	case PlatformLeetCode:
		return "LeetCode"
	case PlatformGFG:
		return "GeeksforGeeks"
	case PlatformTUF:
		return "TUF+"
	case PlatformOther:
		return "Other"
	}
	return string(p)
}

// Problem is one solved-problem entry owned by a user.
type Problem struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Name       string      `json:"name"`
	Platform   Platform    `json:"platform"`
	Difficulty *Difficulty `json:"difficulty,omitempty"`
	Category   *string     `json:"category,omitempty"`
	Tags       []string    `json:"tags"`
	URL        *string     `json:"url,omitempty"`
	SolvedAt   time.Time   `json:"solved_at"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DedupKey identifies a problem across sync cycles.
func DedupKey(p Platform, name string) string {
	return string(p) + "-" + strings.ToLower(strings.TrimSpace(name))
}
