package model

import "time"

// PlatformStat is the solved-count summary a platform reports for its own profile.
type PlatformStat struct {
	UserID       string    `json:"user_id"`
	Platform     Platform  `json:"platform"`
	TotalSolved  int       `json:"total_solved"`
	EasySolved   int       `json:"easy_solved"`
	MediumSolved int       `json:"medium_solved"`
	HardSolved   int       `json:"hard_solved"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Decrement removes one solved problem of difficulty d, never going below zero.
func (s *PlatformStat) Decrement(d *Difficulty) {
	s.TotalSolved = floorZero(s.TotalSolved - 1)
	if d == nil {
		return
	}
	switch *d {
	case DifficultyEasy:
		s.EasySolved = floorZero(s.EasySolved - 1)
	case DifficultyMedium:
		s.MediumSolved = floorZero(s.MediumSolved - 1)
	case DifficultyHard:
		s.HardSolved = floorZero(s.HardSolved - 1)
	}
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
