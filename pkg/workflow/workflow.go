package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
	"github.com/aiview/aiview/pkg/agents"
	"github.com/aiview/aiview/pkg/github"
	"github.com/aiview/aiview/pkg/scraper"
)

// Request is everything the preparation pipeline needs about one candidate.
type Request struct {
	UserID         string `json:"user_id"`
	WorkflowID     string `json:"workflow_id,omitempty"`
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	LinkedinLink   string `json:"linkedin_link,omitempty"`
	GithubLink     string `json:"github_link,omitempty"`
	PortfolioLink  string `json:"portfolio_link,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	NumQuestions   int    `json:"num_questions,omitempty"`
}

// Result is the outcome of one preparation run.
type Result struct {
	UserID           string                  `json:"user_id"`
	WorkflowID       string                  `json:"workflow_id"`
	Title            string                  `json:"title"`
	CompletedAgents  []string                `json:"completed_agents"`
	Summary          *models.PersonalSummary `json:"summary,omitempty"`
	IndustryFAQ      *models.IndustryFAQ     `json:"industry_faq,omitempty"`
	QAs              []models.RecommendedQA  `json:"qas"`
	ExecutionSeconds float64                 `json:"execution_seconds"`
}

// Progress is called as each pipeline stage finishes, for CLI feedback.
type Progress func(stage string)

// Coordinator runs the preparation agents in sequence: enrich the raw
// materials, summarize, search the web, generate questions, then write
// personalized answers. Only summarization and question generation are
// fatal; enrichment and search degrade gracefully.
type Coordinator struct {
	summarizer *agents.Summarizer
	search     *agents.SearchAgent
	questions  *agents.QuestionGenerator
	answers    *agents.AnswerGenerator
	github     *github.Analyzer
	scraper    *scraper.Scraper
	store      types.Store

	numQuestions int
	progress     Progress
}

// CoordinatorConfig wires the pipeline together. Github, Scraper, Store
// and Progress are optional.
type CoordinatorConfig struct {
	Summarizer   *agents.Summarizer
	Search       *agents.SearchAgent
	Questions    *agents.QuestionGenerator
	Answers      *agents.AnswerGenerator
	Github       *github.Analyzer
	Scraper      *scraper.Scraper
	Store        types.Store
	NumQuestions int
	Progress     Progress
}

func NewCoordinator(config CoordinatorConfig) (*Coordinator, error) {
	if config.Summarizer == nil || config.Questions == nil || config.Answers == nil {
		return nil, fmt.Errorf("summarizer, question and answer agents are required")
	}
	if config.NumQuestions <= 0 {
		config.NumQuestions = 50
	}
	if config.Progress == nil {
		config.Progress = func(string) {}
	}

	return &Coordinator{
		summarizer:   config.Summarizer,
		search:       config.Search,
		questions:    config.Questions,
		answers:      config.Answers,
		github:       config.Github,
		scraper:      config.Scraper,
		store:        config.Store,
		numQuestions: config.NumQuestions,
		progress:     config.Progress,
	}, nil
}

// Run executes the full preparation pipeline for one candidate.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.WorkflowID == "" {
		req.WorkflowID = agents.NewSessionID()
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = c.numQuestions
	}

	result := &Result{UserID: req.UserID, WorkflowID: req.WorkflowID}
	done := func(stage string) {
		result.CompletedAgents = append(result.CompletedAgents, stage)
		c.progress(stage)
	}

	// Profile enrichment. Failures leave the field empty.
	input := agents.SummarizerInput{
		ResumeText:     req.ResumeText,
		LinkedinInfo:   req.LinkedinLink,
		AdditionalInfo: req.AdditionalInfo,
		JobDescription: req.JobDescription,
	}
	if req.GithubLink != "" && c.github != nil {
		if info, err := c.github.ProfileSummary(ctx, req.GithubLink); err != nil {
			log.Printf("github analysis failed: %v", err)
		} else {
			input.GithubInfo = info
		}
	}
	if req.PortfolioLink != "" && c.scraper != nil {
		if info, err := c.scraper.AnalyzePortfolio(ctx, req.PortfolioLink); err != nil {
			log.Printf("portfolio analysis failed: %v", err)
		} else {
			input.PortfolioInfo = info
		}
	}

	summary, err := c.summarizer.Summarize(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("summarizer failed: %v", err)
	}
	result.Summary = summary
	result.Title = summary.Title
	done("summarizer")

	// Web search is best-effort. A run without industry questions still
	// produces a usable bank from the candidate's background alone.
	if c.search != nil {
		if faq, err := c.search.SearchInterviewQuestions(ctx, req.JobDescription); err != nil {
			log.Printf("interview question search failed: %v", err)
		} else {
			result.IndustryFAQ = faq
			done("search")
		}
	}

	questions, err := c.questions.Generate(ctx, summary, result.IndustryFAQ, req.NumQuestions)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %v", err)
	}
	done("question_generator")

	qas, err := c.answers.GenerateAndSave(ctx, req.UserID, req.WorkflowID, questions, summary)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %v", err)
	}
	result.QAs = qas
	done("answer_generator")

	if c.store != nil {
		if err := c.store.SaveWorkflow(ctx, req.UserID, req.WorkflowID, summary.Title); err != nil {
			return nil, fmt.Errorf("failed to save workflow: %v", err)
		}
		if err := c.store.SavePersonalExperience(ctx, req.UserID, req.WorkflowID, summary.Experience()); err != nil {
			return nil, fmt.Errorf("failed to save personal experience: %v", err)
		}
	}

	result.ExecutionSeconds = time.Since(start).Seconds()
	return result, nil
}
