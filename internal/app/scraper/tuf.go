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

const tufMaxAncestorLevels = 5

var (
	tufSolvedOfTotal = regexp.MustCompile(`(\d+)\s*/`)
	tufAnyNumber     = regexp.MustCompile(`(\d+)`)
)

// TUFClient scrapes the rendered TUF+ profile page.
type TUFClient struct {
	renderer   Renderer
	profileURL string
	log        *logger.Logger
}

// NewTUFClient takes a profile URL template with one %s for the handle.
func NewTUFClient(renderer Renderer, profileURL string, log *logger.Logger) *TUFClient {
	return &TUFClient{renderer: renderer, profileURL: profileURL, log: log.With("client", "tuf")}
}

func (c *TUFClient) Platform() model.Platform { return model.PlatformTUF }

func (c *TUFClient) FetchProfile(ctx context.Context, handle string) FetchResult {
	pageURL := fmt.Sprintf(c.profileURL, url.PathEscape(handle))
	html, err := c.renderer.Render(ctx, RenderRequest{
		URL:               pageURL,
		NavigationTimeout: 60 * time.Second,
		WaitSelector:      "span",
		WaitTimeout:       5 * time.Second,
	})
	if err != nil {
		c.log.Warn("tuf render failed", "handle", handle, "error", err)
		return Failed(err)
	}
	return parseTUFProfile(html, c.log.With("url", pageURL))
}

func parseTUFProfile(html string, log *logger.Logger) FetchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Failed(fmt.Errorf("parse tuf page: %w", err))
	}
	if looksLikeErrorPage(doc) {
		return NotFound()
	}

	profile := &ProfileSummary{
		EasySolved:   labelledCount(doc, "Easy", ancestorCounter),
		MediumSolved: labelledCount(doc, "Medium", ancestorCounter),
		HardSolved:   labelledCount(doc, "Hard", ancestorCounter),
		RecentItems:  []RecentItem{},
	}
	profile.TotalSolved = profile.EasySolved + profile.MediumSolved + profile.HardSolved
	if profile.TotalSolved == 0 {
		profile.TotalSolved = labelledCount(doc, "Solved", siblingNumber)
		log.Debug("difficulty counters missing on tuf page, used solved label", "total", profile.TotalSolved)
	}
	return Found(profile)
}

// labelledCount returns the value read for the first span whose text is label.
func labelledCount(doc *goquery.Document, label string, read func(*goquery.Selection) (int, bool)) int {
	count := 0
	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if strings.TrimSpace(span.Text()) != label {
			return true
		}
		if n, ok := read(span); ok {
			count = n
			return false
		}
		return true
	})
	return count
}

// ancestorCounter reads "N/" from the element before the span's parent, or before one
// of the parent's ancestors, at most tufMaxAncestorLevels levels up. The span's own
// siblings are never read.
func ancestorCounter(span *goquery.Selection) (int, bool) {
	current := span.Parent()
	for level := 0; level < tufMaxAncestorLevels && current.Length() > 0; level++ {
		if n, ok := numberIn(current.Prev(), tufSolvedOfTotal); ok {
			return n, true
		}
		current = current.Parent()
	}
	return 0, false
}

// siblingNumber reads the first number from the element just before span.
func siblingNumber(span *goquery.Selection) (int, bool) {
	return numberIn(span.Prev(), tufAnyNumber)
}

func numberIn(sel *goquery.Selection, re *regexp.Regexp) (int, bool) {
	if sel.Length() == 0 {
		return 0, false
	}
	m := re.FindStringSubmatch(sel.Text())
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
