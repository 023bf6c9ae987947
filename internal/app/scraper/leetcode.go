package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/platform/logger"
)

const recentSubmissionLimit = 50

const leetCodeProfileQuery = `
query getUserProfile($username: String!, $limit: Int!) {
  matchedUser(username: $username) {
    username
    submitStats: submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
  recentSubmissionList(username: $username, limit: $limit) {
    title
    titleSlug
    timestamp
    statusDisplay
    lang
  }
}`

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type leetCodeResponse struct {
	Data struct {
		MatchedUser *struct {
			Username    string `json:"username"`
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
		RecentSubmissionList []struct {
			Title         string `json:"title"`
			TitleSlug     string `json:"titleSlug"`
			Timestamp     string `json:"timestamp"`
			StatusDisplay string `json:"statusDisplay"`
			Lang          string `json:"lang"`
		} `json:"recentSubmissionList"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// LeetCodeClient reads profiles through LeetCode's public GraphQL endpoint.
type LeetCodeClient struct {
	endpoint   string
	httpClient *http.Client
	log        *logger.Logger
}

func NewLeetCodeClient(endpoint string, httpClient *http.Client, log *logger.Logger) *LeetCodeClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &LeetCodeClient{endpoint: endpoint, httpClient: httpClient, log: log.With("client", "leetcode")}
}

func (c *LeetCodeClient) Platform() model.Platform { return model.PlatformLeetCode }

func (c *LeetCodeClient) FetchProfile(ctx context.Context, handle string) FetchResult {
	resp, err := c.query(ctx, handle)
	if err != nil {
		c.log.Warn("leetcode fetch failed", "handle", handle, "error", err)
		return Failed(err)
	}
	if resp.Data.MatchedUser == nil {
		return NotFound()
	}

	profile := &ProfileSummary{RecentItems: []RecentItem{}}
	for _, n := range resp.Data.MatchedUser.SubmitStats.AcSubmissionNum {
		switch n.Difficulty {
		case "All":
			profile.TotalSolved = n.Count
		case "Easy":
			profile.EasySolved = n.Count
		case "Medium":
			profile.MediumSolved = n.Count
		case "Hard":
			profile.HardSolved = n.Count
		}
	}
	for _, s := range resp.Data.RecentSubmissionList {
		profile.RecentItems = append(profile.RecentItems, RecentItem{
			Title:     s.Title,
			Timestamp: parseUnixSeconds(s.Timestamp),
			Status:    s.StatusDisplay,
		})
	}
	return Found(profile)
}

func (c *LeetCodeClient) query(ctx context.Context, handle string) (*leetCodeResponse, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     leetCodeProfileQuery,
		Variables: map[string]interface{}{"username": handle, "limit": recentSubmissionLimit},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Referer", "https://leetcode.com/"+handle+"/")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leetcode request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("leetcode read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("leetcode returned status %d", res.StatusCode)
	}

	var out leetCodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("leetcode decode response: %w", err)
	}
	return &out, nil
}

func parseUnixSeconds(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
