package model

import "time"

type PlatformCredential struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Platform   Platform   `json:"platform"`
	Username   string     `json:"username"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
