package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyRequiresAPIKey(t *testing.T) {
	_, err := NewTavilyWithConfig(TavilyConfig{})
	assert.Error(t, err)
}

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tvly-test", req.APIKey)
		assert.Equal(t, "golang interview questions", req.Query)
		assert.Equal(t, "advanced", req.SearchDepth)
		assert.Equal(t, 5, req.MaxResults)

		json.NewEncoder(w).Encode(tavilyResponse{
			Results: []struct {
				Title   string  `json:"title"`
				URL     string  `json:"url"`
				Content string  `json:"content"`
				Score   float64 `json:"score"`
			}{
				{Title: "Top Go Questions", URL: "https://example.com/go", Content: "What is a goroutine?", Score: 0.97},
			},
		})
	}))
	defer server.Close()

	client, err := NewTavilyWithConfig(TavilyConfig{
		APIKey:    "tvly-test",
		BaseURL:   server.URL,
		RateLimit: 100,
	})
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "golang interview questions", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Top Go Questions", results[0].Title)
	assert.Equal(t, "https://example.com/go", results[0].URL)
	assert.Equal(t, 0.97, results[0].Score)
}

func TestTavilySearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewTavilyWithConfig(TavilyConfig{
		APIKey:    "bad-key",
		BaseURL:   server.URL,
		RateLimit: 100,
	})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
