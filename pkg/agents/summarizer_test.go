package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizerRequiresInputs(t *testing.T) {
	s := NewSummarizer(&fakeGenerator{})

	_, err := s.Summarize(context.Background(), SummarizerInput{JobDescription: "Backend Engineer"})
	assert.ErrorContains(t, err, "resume text is required")

	_, err = s.Summarize(context.Background(), SummarizerInput{ResumeText: "5 years of Go"})
	assert.ErrorContains(t, err, "job description is required")
}

func TestSummarize(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{
		"title": "Backend Engineer",
		"resumeInfo": "5 years of Go, built payment services",
		"githubInfo": "Maintains a popular rate limiter",
		"jobDescription": "Go backend role at a fintech"
	}`}}
	s := NewSummarizer(gen)

	summary, err := s.Summarize(context.Background(), SummarizerInput{
		ResumeText:     "5 years of Go...",
		GithubInfo:     "rate limiter repo, 400 stars",
		JobDescription: "Backend Engineer\nWe need a Go developer.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", summary.Title)
	assert.Equal(t, "5 years of Go, built payment services", summary.ResumeInfo)
	assert.Equal(t, "Maintains a popular rate limiter", summary.GithubInfo)

	// The raw materials all reach the model.
	assert.Contains(t, gen.prompts[0], "## Resume")
	assert.Contains(t, gen.prompts[0], "## GitHub")
	assert.Contains(t, gen.prompts[0], "rate limiter repo, 400 stars")
	assert.Contains(t, gen.prompts[0], "## Job Description")
}

func TestSummarizeFillsMissingTitle(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{"resumeInfo": "some background"}`}}
	s := NewSummarizer(gen)

	summary, err := s.Summarize(context.Background(), SummarizerInput{
		ResumeText:     "resume",
		JobDescription: "Position: Data Engineer\nWe build pipelines.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Data Engineer", summary.Title)
	assert.Equal(t, "Position: Data Engineer\nWe build pipelines.", summary.JobDescription)
}

func TestSummarizeSkipsEmptySections(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{"title": "SRE"}`}}
	s := NewSummarizer(gen)

	_, err := s.Summarize(context.Background(), SummarizerInput{
		ResumeText:     "resume",
		JobDescription: "SRE",
	})
	require.NoError(t, err)

	assert.NotContains(t, gen.prompts[0], "## LinkedIn")
	assert.NotContains(t, gen.prompts[0], "## Portfolio")
}
