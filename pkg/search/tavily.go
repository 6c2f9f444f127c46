package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/aiview/aiview/internal/models"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// TavilyConfig represents the configuration for the Tavily search client.
type TavilyConfig struct {
	APIKey    string
	Depth     string // "basic" or "advanced"
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// TavilyClient calls the hosted Tavily search API.
type TavilyClient struct {
	config  TavilyConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewTavilyWithConfig(config TavilyConfig) (*TavilyClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("tavily API key is required")
	}
	if config.Depth == "" {
		config.Depth = "advanced"
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultTavilyURL
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1.0
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &TavilyClient{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one Tavily query and returns its results.
func (t *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.config.APIKey,
		Query:       query,
		SearchDepth: t.config.Depth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tavily request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tavily request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %v", err)
	}

	results := make([]models.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, models.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}
