package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"prep_tracker/internal/domain/model"
	"prep_tracker/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
)

const gfgRecentLimit = 10

var (
	gfgEasyPattern   = regexp.MustCompile(`(?i)Easy\s*[:(]?\s*(\d+)`)
	gfgMediumPattern = regexp.MustCompile(`(?i)Medium\s*[:(]?\s*(\d+)`)
	gfgHardPattern   = regexp.MustCompile(`(?i)Hard\s*[:(]?\s*(\d+)`)
	gfgTotalPattern  = regexp.MustCompile(`(?i)Problems\s+Solved\s*:?\s*(\d+)`)
)

// GFGClient scrapes the rendered GeeksforGeeks profile page.
type GFGClient struct {
	renderer   Renderer
	profileURL string
	now        func() time.Time
	log        *logger.Logger
}

// NewGFGClient takes a profile URL template with one %s for the handle.
func NewGFGClient(renderer Renderer, profileURL string, log *logger.Logger) *GFGClient {
	return &GFGClient{renderer: renderer, profileURL: profileURL, now: time.Now, log: log.With("client", "gfg")}
}

func (c *GFGClient) Platform() model.Platform { return model.PlatformGFG }

func (c *GFGClient) FetchProfile(ctx context.Context, handle string) FetchResult {
	pageURL := fmt.Sprintf(c.profileURL, url.PathEscape(handle))
	html, err := c.renderer.Render(ctx, RenderRequest{
		URL:               pageURL,
		NavigationTimeout: 45 * time.Second,
		WaitSelector:      ".profile_pic",
		WaitTimeout:       10 * time.Second,
		Scroll:            true,
	})
	if err != nil {
		c.log.Warn("gfg render failed", "handle", handle, "error", err)
		return Failed(err)
	}
	return parseGFGProfile(html, pageURL, c.now().UTC(), c.log)
}

func parseGFGProfile(html, pageURL string, now time.Time, log *logger.Logger) FetchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Failed(fmt.Errorf("parse gfg page: %w", err))
	}
	if looksLikeErrorPage(doc) {
		return NotFound()
	}

	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()

	profile := &ProfileSummary{
		EasySolved:   firstNumber(gfgEasyPattern, text),
		MediumSolved: firstNumber(gfgMediumPattern, text),
		HardSolved:   firstNumber(gfgHardPattern, text),
	}
	profile.TotalSolved = reconcileTotal(firstNumber(gfgTotalPattern, text), profile.EasySolved, profile.MediumSolved, profile.HardSolved)
	if profile.TotalSolved == 0 {
		log.Debug("no solved counters found on gfg page", "url", pageURL)
	}
	profile.RecentItems = gfgRecentItems(doc, pageURL, now)
	return Found(profile)
}

// reconcileTotal trusts a declared total only when it is at least the sum of its buckets.
func reconcileTotal(declared, easy, medium, hard int) int {
	sum := easy + medium + hard
	if declared == 0 || sum > declared {
		return sum
	}
	return declared
}

func gfgRecentItems(doc *goquery.Document, pageURL string, now time.Time) []RecentItem {
	base, _ := url.Parse(pageURL)
	seen := map[string]bool{}
	items := []RecentItem{}
	doc.Find(`a[href*="/problems/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Text())
		if len(title) <= 3 || strings.Contains(title, "Solve Problem") || seen[title] {
			return true
		}
		seen[title] = true

		item := RecentItem{Title: title, Timestamp: now, Status: "Solved"}
		if href, ok := a.Attr("href"); ok && base != nil {
			if ref, err := url.Parse(href); err == nil {
				item.URL = base.ResolveReference(ref).String()
			}
		}
		items = append(items, item)
		return len(items) < gfgRecentLimit
	})
	return items
}

func looksLikeErrorPage(doc *goquery.Document) bool {
	title := doc.Find("title").First().Text()
	return strings.Contains(title, "Error") || strings.Contains(title, "Not Found")
}

func firstNumber(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
