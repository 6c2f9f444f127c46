package agents

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

// fallbackResource replaces suggested links that turn out to be dead.
var fallbackResource = models.Resource{
	Title: "5 Tips To Ace a Behavioral-Based Interview",
	Link:  "https://jobs.gartner.com/life-at-gartner/your-career/5-tips-to-ace-a-behavioral-based-interview/",
}

// Judge evaluates a finished interview: it scores the transcript,
// verifies that every suggested resource link is actually reachable and
// persists the feedback.
type Judge struct {
	llm    types.Generator
	store  types.Store
	search types.SearchProvider
	client *http.Client
}

func NewJudge(llm types.Generator, store types.Store, search types.SearchProvider) *Judge {
	return &Judge{
		llm:    llm,
		store:  store,
		search: search,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Evaluate produces feedback for a finished session and saves it.
func (j *Judge) Evaluate(ctx context.Context, session *Session) (*models.Feedback, error) {
	transcript := session.Transcript()
	if len(transcript) == 0 {
		return nil, fmt.Errorf("session %s has an empty transcript", session.ID)
	}

	var feedback models.Feedback
	if err := j.llm.GenerateJSON(ctx, judgePrompt, buildJudgePrompt(session, transcript), &feedback); err != nil {
		return nil, fmt.Errorf("failed to generate feedback: %v", err)
	}
	if err := validateFeedback(&feedback); err != nil {
		return nil, err
	}

	feedback.Resources = j.verifyResources(ctx, feedback.Resources)

	if j.store != nil {
		if err := j.store.SaveFeedback(ctx, session.UserID, session.WorkflowID, session.ID, feedback); err != nil {
			return nil, fmt.Errorf("failed to save feedback: %v", err)
		}
	}
	return &feedback, nil
}

func buildJudgePrompt(session *Session, transcript []models.TranscriptEntry) string {
	var b strings.Builder

	if session.Experience != nil {
		b.WriteString("## Candidate Background\n")
		b.WriteString("Resume: " + session.Experience.ResumeInfo + "\n")
		if session.Experience.JobDescription != "" {
			b.WriteString("Target job: " + session.Experience.JobDescription + "\n")
		}
		b.WriteString("\n")
	}

	if len(session.QAs) > 0 {
		b.WriteString("## Prepared Questions\n")
		limit := len(session.QAs)
		if limit > 20 {
			limit = 20
		}
		for _, qa := range session.QAs[:limit] {
			b.WriteString("- " + qa.Question + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Interview Transcript\n")
	for _, entry := range transcript {
		b.WriteString(entry.Role + ": " + entry.Message + "\n")
	}
	return b.String()
}

func validateFeedback(feedback *models.Feedback) error {
	if strings.TrimSpace(feedback.Summary) == "" {
		return fmt.Errorf("feedback is missing a summary")
	}
	if len(feedback.Strengths) == 0 && len(feedback.AreasForImprovement) == 0 {
		return fmt.Errorf("feedback contains neither strengths nor improvement areas")
	}
	return nil
}

// verifyResources drops hallucinated links, replacing each dead one via
// a fresh web search and falling back to a known-good resource. The
// returned list is deduplicated by link.
func (j *Judge) verifyResources(ctx context.Context, resources []models.Resource) []models.Resource {
	var verified []models.Resource
	seen := make(map[string]bool)

	add := func(r models.Resource) {
		if r.Link == "" || seen[r.Link] {
			return
		}
		seen[r.Link] = true
		verified = append(verified, r)
	}

	for _, resource := range resources {
		if j.linkAlive(ctx, resource.Link) {
			add(resource)
			continue
		}
		log.Printf("resource link dead, searching replacement: %s", resource.Link)
		if replacement, ok := j.searchReplacement(ctx, resource.Title); ok {
			add(replacement)
		} else {
			add(fallbackResource)
		}
	}

	if len(verified) == 0 {
		verified = append(verified, fallbackResource)
	}
	return verified
}

// linkAlive fetches the URL and rejects soft 404s: error pages served
// with a 200 status and suspiciously small bodies.
func (j *Judge) linkAlive(ctx context.Context, link string) bool {
	if !strings.HasPrefix(link, "http") {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; aiview/1.0)")

	resp, err := j.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return false
	}

	lower := strings.ToLower(string(body))
	for _, marker := range []string{"404", "page not found", "not available"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return len(body) >= 500
}

func (j *Judge) searchReplacement(ctx context.Context, title string) (models.Resource, bool) {
	if j.search == nil {
		return models.Resource{}, false
	}

	results, err := j.search.Search(ctx, title+" interview tips", 3)
	if err != nil || len(results) == 0 {
		return models.Resource{}, false
	}
	return models.Resource{Title: results[0].Title, Link: results[0].URL}, true
}
