package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/aiview/aiview/internal/models"
)

const ddgHTMLEndpoint = "https://html.duckduckgo.com/html/"

// DDGConfig represents the configuration for the DuckDuckGo client.
type DDGConfig struct {
	BaseURL   string
	Region    string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// DDGClient queries the DuckDuckGo HTML lite endpoint. It needs no API
// key, which makes it the fallback when Tavily is not configured.
type DDGClient struct {
	config  DDGConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewDDGWithConfig(config DDGConfig) *DDGClient {
	if config.BaseURL == "" {
		config.BaseURL = ddgHTMLEndpoint
	}
	if config.Region == "" {
		config.Region = "wt-wt"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1.0
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &DDGClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// Search runs one DuckDuckGo query and returns its results.
func (d *DDGClient) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", d.config.Region)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build ddg request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://html.duckduckgo.com/")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ddg request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ddg returned status %d", resp.StatusCode)
	}

	results, err := parseDDGHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// parseDDGHTML extracts search results from a DuckDuckGo HTML lite page.
func parseDDGHTML(body io.Reader) ([]models.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ddg response: %v", err)
	}

	var results []models.SearchResult

	doc.Find(".result, .web-result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a, .result__title a").First()
		title := strings.TrimSpace(link.Text())
		href, exists := link.Attr("href")
		if !exists || title == "" {
			return
		}

		href = unwrapDDGURL(href)
		if href == "" {
			return
		}

		snippet := s.Find(".result__snippet, .result__body").First()

		results = append(results, models.SearchResult{
			Title:   title,
			URL:     href,
			Content: strings.TrimSpace(snippet.Text()),
			Score:   1.0,
		})
	})

	return results, nil
}

// unwrapDDGURL extracts the target URL from DuckDuckGo redirect wrappers.
// Links come back as //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func unwrapDDGURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
