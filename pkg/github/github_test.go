package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		wantErr  bool
	}{
		{"https://github.com/octocat", "octocat", false},
		{"https://github.com/octocat/", "octocat", false},
		{"https://www.github.com/octocat/some-repo", "octocat", false},
		{"https://gitlab.com/octocat", "", true},
		{"https://github.com/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			username, err := usernameFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, username)
		})
	}
}

func TestProfileSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		switch {
		case r.URL.Path == "/users/octocat":
			json.NewEncoder(w).Encode(githubUser{
				Login:       "octocat",
				Name:        "The Octocat",
				Bio:         "Building things",
				PublicRepos: 8,
				Followers:   100,
			})
		case strings.HasPrefix(r.URL.Path, "/users/octocat/repos"):
			json.NewEncoder(w).Encode([]githubRepo{
				{Name: "forked-thing", Fork: true, Stars: 500},
				{Name: "chat-server", Description: "Realtime chat", Language: "Go", Stars: 42},
				{Name: "dotfiles", Language: "Shell", Stars: 3},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	analyzer := NewWithConfig(AnalyzerConfig{
		Token:   "test-token",
		BaseURL: server.URL,
	})

	summary, err := analyzer.ProfileSummary(context.Background(), "https://github.com/octocat")
	require.NoError(t, err)

	assert.Contains(t, summary, "The Octocat")
	assert.Contains(t, summary, "Bio: Building things")
	assert.Contains(t, summary, "chat-server (Go), 42 stars: Realtime chat")
	assert.Contains(t, summary, "dotfiles (Shell)")
	// Forks are dropped
	assert.NotContains(t, summary, "forked-thing")
	assert.Contains(t, summary, "Languages: Go, Shell")

	// Most starred repo comes first
	assert.Less(t, strings.Index(summary, "chat-server"), strings.Index(summary, "dotfiles"))
}

func TestProfileSummaryMaxRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/octocat" {
			json.NewEncoder(w).Encode(githubUser{Login: "octocat"})
			return
		}
		json.NewEncoder(w).Encode([]githubRepo{
			{Name: "a", Stars: 3},
			{Name: "b", Stars: 2},
			{Name: "c", Stars: 1},
		})
	}))
	defer server.Close()

	analyzer := NewWithConfig(AnalyzerConfig{BaseURL: server.URL, MaxRepos: 2})

	summary, err := analyzer.ProfileSummary(context.Background(), "https://github.com/octocat")
	require.NoError(t, err)
	assert.Contains(t, summary, "- a")
	assert.Contains(t, summary, "- b")
	assert.NotContains(t, summary, "- c")
}

func TestProfileSummaryAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	analyzer := NewWithConfig(AnalyzerConfig{BaseURL: server.URL})

	_, err := analyzer.ProfileSummary(context.Background(), "https://github.com/octocat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
