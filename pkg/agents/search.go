package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

// SearchAgent gathers interview questions for a role from the web and
// has the model organize them by category.
type SearchAgent struct {
	llm        types.Generator
	provider   types.SearchProvider
	maxResults int
}

func NewSearchAgent(llm types.Generator, provider types.SearchProvider, maxResults int) *SearchAgent {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &SearchAgent{llm: llm, provider: provider, maxResults: maxResults}
}

// SearchInterviewQuestions extracts the job title from the description,
// runs a fixed set of queries and organizes the merged results.
func (a *SearchAgent) SearchInterviewQuestions(ctx context.Context, jobDescription string) (*models.IndustryFAQ, error) {
	title := ExtractJobTitle(jobDescription)

	var results []models.SearchResult
	for _, query := range searchQueries(title) {
		found, err := a.provider.Search(ctx, query, a.maxResults)
		if err != nil {
			// A single failed query should not sink the rest.
			log.Printf("search query %q failed: %v", query, err)
			continue
		}
		results = append(results, found...)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all search queries failed for title %q", title)
	}

	prompt := fmt.Sprintf("Job description:\n%s\n\nSearch results:\n%s", jobDescription, formatResults(results))

	var faq models.IndustryFAQ
	if err := a.llm.GenerateJSON(ctx, searchPrompt, prompt, &faq); err != nil {
		return nil, fmt.Errorf("failed to organize search results: %v", err)
	}
	return &faq, nil
}

func searchQueries(title string) []string {
	return []string{
		title + " interview questions",
		title + " technical interview questions",
		title + " behavioral interview questions",
		title + " interview experience",
		title + " common interview questions 2024",
	}
}

// ExtractJobTitle pulls a plausible job title out of a free-form job
// description without a model call. It scans the first few lines for a
// labeled or short standalone title and falls back to the first line.
func ExtractJobTitle(jobDescription string) string {
	lines := strings.Split(jobDescription, "\n")

	var candidates []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		candidates = append(candidates, line)
		if len(candidates) == 5 {
			break
		}
	}
	if len(candidates) == 0 {
		return "Software Engineer"
	}

	prefixes := []string{"Position:", "Job Title:", "Role:", "Title:"}
	for _, line := range candidates {
		for _, prefix := range prefixes {
			if strings.HasPrefix(line, prefix) {
				if title := strings.TrimSpace(strings.TrimPrefix(line, prefix)); title != "" {
					return title
				}
			}
		}
		if len(line) < 100 && len(strings.Fields(line)) < 10 {
			return line
		}
	}
	return candidates[0]
}

func formatResults(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Title))
		b.WriteString("URL: " + r.URL + "\n")
		if r.Content != "" {
			b.WriteString(r.Content + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
