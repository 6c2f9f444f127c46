package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// AnalyzerConfig represents the configuration for the GitHub analyzer.
type AnalyzerConfig struct {
	Token    string // optional, raises the rate limit
	MaxRepos int
	BaseURL  string
	Timeout  time.Duration
}

// Analyzer summarizes a candidate's public GitHub profile for the
// preparation workflow.
type Analyzer struct {
	config AnalyzerConfig
	client *http.Client
}

func NewWithConfig(config AnalyzerConfig) *Analyzer {
	if config.MaxRepos == 0 {
		config.MaxRepos = 10
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultAPIBase
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Analyzer{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

type githubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Fork        bool   `json:"fork"`
}

// ProfileSummary fetches a GitHub profile and returns a text summary of
// the user and their most notable repositories.
func (a *Analyzer) ProfileSummary(ctx context.Context, profileURL string) (string, error) {
	username, err := usernameFromURL(profileURL)
	if err != nil {
		return "", err
	}

	var user githubUser
	if err := a.get(ctx, "/users/"+username, &user); err != nil {
		return "", fmt.Errorf("failed to fetch github user: %v", err)
	}

	var repos []githubRepo
	if err := a.get(ctx, "/users/"+username+"/repos?per_page=100&type=owner", &repos); err != nil {
		return "", fmt.Errorf("failed to fetch github repos: %v", err)
	}

	return a.format(user, repos), nil
}

func (a *Analyzer) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "aiview")
	if a.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.Token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *Analyzer) format(user githubUser, repos []githubRepo) string {
	var b strings.Builder

	name := user.Name
	if name == "" {
		name = user.Login
	}
	b.WriteString(fmt.Sprintf("GitHub profile: %s (%d public repos, %d followers)\n", name, user.PublicRepos, user.Followers))
	if user.Bio != "" {
		b.WriteString("Bio: " + user.Bio + "\n")
	}
	if user.Company != "" {
		b.WriteString("Company: " + user.Company + "\n")
	}

	// Keep the candidate's own work, most-starred first.
	owned := repos[:0]
	for _, r := range repos {
		if !r.Fork {
			owned = append(owned, r)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Stars > owned[j].Stars })
	if len(owned) > a.config.MaxRepos {
		owned = owned[:a.config.MaxRepos]
	}

	languages := make(map[string]int)
	if len(owned) > 0 {
		b.WriteString("Top repositories:\n")
		for _, r := range owned {
			line := fmt.Sprintf("- %s", r.Name)
			if r.Language != "" {
				line += " (" + r.Language + ")"
				languages[r.Language]++
			}
			if r.Stars > 0 {
				line += fmt.Sprintf(", %d stars", r.Stars)
			}
			if r.Description != "" {
				line += ": " + r.Description
			}
			b.WriteString(line + "\n")
		}
	}

	if len(languages) > 0 {
		names := make([]string, 0, len(languages))
		for lang := range languages {
			names = append(names, lang)
		}
		sort.Slice(names, func(i, j int) bool {
			if languages[names[i]] != languages[names[j]] {
				return languages[names[i]] > languages[names[j]]
			}
			return names[i] < names[j]
		})
		b.WriteString("Languages: " + strings.Join(names, ", ") + "\n")
	}

	return strings.TrimSpace(b.String())
}

func usernameFromURL(profileURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(profileURL))
	if err != nil {
		return "", fmt.Errorf("invalid github URL: %v", err)
	}
	if !strings.HasSuffix(u.Host, "github.com") {
		return "", fmt.Errorf("not a github URL: %s", profileURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", fmt.Errorf("no username in github URL: %s", profileURL)
	}
	return parts[0], nil
}
