package model

type PlatformBreakdown struct {
	Platform Platform `json:"platform"`
	Count    int      `json:"count"`
	Easy     int      `json:"easy"`
	Medium   int      `json:"medium"`
	Hard     int      `json:"hard"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is the combined view over platform aggregates and stored problems.
type Stats struct {
	Total         int                 `json:"total"`
	Easy          int                 `json:"easy"`
	Medium        int                 `json:"medium"`
	Hard          int                 `json:"hard"`
	PlatformStats []PlatformBreakdown `json:"platform_stats"`
	CategoryStats []CategoryCount     `json:"category_stats"`
}
