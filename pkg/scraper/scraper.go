package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ScraperConfig represents the configuration for the portfolio scraper.
type ScraperConfig struct {
	RateLimit      float64 // requests per second
	Timeout        time.Duration
	MaxContentSize int
	UserAgent      string
}

// Scraper fetches a candidate's portfolio page and condenses it into a
// text block the summarizer can consume.
type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ScraperConfig) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.MaxContentSize == 0 {
		config.MaxContentSize = 50000
	}
	if config.UserAgent == "" {
		config.UserAgent = "Portfolio-Analyzer/1.0"
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Scraper {
	return NewWithConfig(ScraperConfig{})
}

// Selector preference lists for common portfolio platforms.
var (
	titleSelectors       = []string{"h1", "[class*='name']", "[class*='title']"}
	descriptionSelectors = []string{"[class*='bio']", "[class*='about']", "[class*='description']"}
	projectSelectors     = []string{"[class*='project']", "[class*='portfolio']", "[class*='work']"}
	skillSelectors       = []string{"[class*='skill']", "[class*='tech']", "[class*='tool']"}
)

// AnalyzePortfolio fetches a portfolio URL and returns a text summary of
// what it found: title, description, projects and skills.
func (s *Scraper) AnalyzePortfolio(ctx context.Context, urlStr string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch portfolio: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse portfolio page: %v", err)
	}

	var b strings.Builder

	if title := firstMatch(doc, titleSelectors); title != "" {
		b.WriteString("Title: " + title + "\n")
	}
	if desc := firstMatch(doc, descriptionSelectors); desc != "" {
		b.WriteString("About: " + desc + "\n")
	}
	if projects := collectMatches(doc, projectSelectors, 20); len(projects) > 0 {
		b.WriteString("Projects:\n")
		for _, p := range projects {
			b.WriteString("- " + p + "\n")
		}
	}
	if skills := collectMatches(doc, skillSelectors, 50); len(skills) > 0 {
		b.WriteString("Skills: " + strings.Join(skills, ", ") + "\n")
	}

	// Fall back to the main page content when the selectors found nothing.
	if b.Len() == 0 {
		b.WriteString(s.extractMainContent(doc))
	}

	content := strings.TrimSpace(b.String())
	if len(content) > s.config.MaxContentSize {
		content = content[:s.config.MaxContentSize]
	}
	return content, nil
}

func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			if text := cleanContent(selected.First().Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func collectMatches(doc *goquery.Document, selectors []string, limit int) []string {
	var items []string
	seen := make(map[string]bool)

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if len(items) >= limit {
				return
			}
			text := cleanContent(sel.Text())
			if text == "" || len(text) > 300 || seen[text] {
				return
			}
			seen[text] = true
			items = append(items, text)
		})
	}
	return items
}

func (s *Scraper) extractMainContent(doc *goquery.Document) string {
	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if content == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}

func cleanContent(content string) string {
	// Remove extra whitespace
	content = strings.Join(strings.Fields(content), " ")

	// Remove common noise
	noisePatterns := []string{
		"Cookie Policy",
		"Accept Cookies",
		"Privacy Policy",
		"Terms of Service",
	}

	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.TrimSpace(content)
}
