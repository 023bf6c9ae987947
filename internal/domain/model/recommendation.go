package model

import "time"

type Recommendation struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	ProblemName string      `json:"problem_name"`
	Platform    Platform    `json:"platform"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	Category    string      `json:"category"`
	Reason      *string     `json:"reason,omitempty"`
	URL         *string     `json:"url,omitempty"`
	Score       int         `json:"score"`
	CreatedAt   time.Time   `json:"created_at"`
}
