package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/platform/logger"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type GeminiGenerator struct {
	cfg        GeminiConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewGeminiGenerator(log *logger.Logger, cfg GeminiConfig) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeminiGenerator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("component", "GeminiGenerator"),
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type suggestion struct {
	ProblemName string `json:"problemName"`
	Platform    string `json:"platform"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, stats *model.Stats, recent []model.Problem) ([]model.Recommendation, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(stats, recent)}}}}})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.cfg.BaseURL, url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("gemini read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini returned status %d", res.StatusCode)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}
	return parseSuggestions(out.Candidates[0].Content.Parts[0].Text)
}

func buildPrompt(stats *model.Stats, recent []model.Problem) string {
	var b strings.Builder
	b.WriteString("You are a coding interview coach. Based on the practice statistics below, suggest up to 8 problems the user should solve next.\n\n")
	fmt.Fprintf(&b, "Solved: %d total (%d easy, %d medium, %d hard)\n", stats.Total, stats.Easy, stats.Medium, stats.Hard)
	for _, p := range stats.PlatformStats {
		fmt.Fprintf(&b, "- %s: %d solved\n", p.Platform.DisplayName(), p.Count)
	}
	if len(stats.CategoryStats) > 0 {
		b.WriteString("Categories practiced:\n")
		for _, c := range stats.CategoryStats {
			fmt.Fprintf(&b, "- %s: %d\n", c.Category, c.Count)
		}
	}
	if len(recent) > 0 {
		b.WriteString("Recently solved:\n")
		for _, p := range recent {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Platform.DisplayName())
		}
	}
	b.WriteString("\nAnswer with only a JSON array. Each element has the keys problemName, platform (leetcode, gfg or tuf), ")
	b.WriteString("difficulty (easy, medium or hard), category, reason, url and score (0-100, higher is more relevant).")
	return b.String()
}

// parseSuggestions reads a JSON array, tolerating a surrounding markdown code fence.
func parseSuggestions(text string) ([]model.Recommendation, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var raw []suggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("gemini suggestions are not a JSON array: %w", err)
	}

	recs := make([]model.Recommendation, 0, len(raw))
	for _, s := range raw {
		name := strings.TrimSpace(s.ProblemName)
		if name == "" {
			continue
		}
		platform, ok := model.ParsePlatform(s.Platform)
		if !ok {
			platform = model.PlatformOther
		}
		rec := model.Recommendation{
			ProblemName: name,
			Platform:    platform,
			Category:    "others",
			Score:       clampScore(s.Score),
		}
		if d, ok := model.ParseDifficulty(s.Difficulty); ok {
			rec.Difficulty = &d
		}
		if c := model.NormalizeCategory(s.Category); c != nil {
			rec.Category = *c
		}
		if r := strings.TrimSpace(s.Reason); r != "" {
			rec.Reason = &r
		}
		if u := strings.TrimSpace(s.URL); u != "" {
			rec.URL = &u
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func clampScore(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}
