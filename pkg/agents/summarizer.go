package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

// SummarizerInput carries the raw candidate materials collected before
// summarization. Every field is optional except ResumeText and
// JobDescription.
type SummarizerInput struct {
	ResumeText     string
	LinkedinInfo   string
	GithubInfo     string
	PortfolioInfo  string
	AdditionalInfo string
	JobDescription string
}

// Summarizer condenses the candidate's materials into a structured
// personal summary keyed to the target job.
type Summarizer struct {
	llm types.Generator
}

func NewSummarizer(llm types.Generator) *Summarizer {
	return &Summarizer{llm: llm}
}

func (s *Summarizer) Summarize(ctx context.Context, input SummarizerInput) (*models.PersonalSummary, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(input.JobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	var summary models.PersonalSummary
	if err := s.llm.GenerateJSON(ctx, summarizerPrompt, s.buildPrompt(input), &summary); err != nil {
		return nil, fmt.Errorf("failed to summarize candidate materials: %v", err)
	}

	// The model occasionally drops the title for vague postings. Keep
	// downstream query building working with a generic one.
	if strings.TrimSpace(summary.Title) == "" {
		summary.Title = ExtractJobTitle(input.JobDescription)
	}
	if strings.TrimSpace(summary.JobDescription) == "" {
		summary.JobDescription = input.JobDescription
	}

	return &summary, nil
}

func (s *Summarizer) buildPrompt(input SummarizerInput) string {
	var b strings.Builder

	b.WriteString("## Resume\n")
	b.WriteString(input.ResumeText)
	b.WriteString("\n\n## Job Description\n")
	b.WriteString(input.JobDescription)

	sections := []struct {
		heading string
		content string
	}{
		{"LinkedIn", input.LinkedinInfo},
		{"GitHub", input.GithubInfo},
		{"Portfolio", input.PortfolioInfo},
		{"Additional Information", input.AdditionalInfo},
	}
	for _, section := range sections {
		if strings.TrimSpace(section.content) == "" {
			continue
		}
		b.WriteString("\n\n## " + section.heading + "\n")
		b.WriteString(section.content)
	}

	return b.String()
}
