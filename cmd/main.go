package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/aiview/aiview/internal/types"
	"github.com/aiview/aiview/pkg/agents"
	cfgPkg "github.com/aiview/aiview/pkg/config"
	"github.com/aiview/aiview/pkg/github"
	"github.com/aiview/aiview/pkg/llm"
	"github.com/aiview/aiview/pkg/scraper"
	"github.com/aiview/aiview/pkg/search"
	"github.com/aiview/aiview/pkg/store"
	"github.com/aiview/aiview/pkg/workflow"
	"github.com/aiview/aiview/server"
)

type cliFlags struct {
	configPath    string
	serve         bool
	userID        string
	resumePath    string
	jobPath       string
	linkedinLink  string
	githubLink    string
	portfolioLink string
	numQuestions  int
	interview     bool
	duration      int
}

func main() {
	flags := parseFlags()

	cfg, err := cfgPkg.LoadConfig(flags.configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %s: %s", e.Field, e.Message)
		}
		os.Exit(1)
	}

	app, err := buildApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.close()

	if flags.serve {
		srv := server.NewWithConfig(server.ServerConfig{
			Config:      cfg,
			Coordinator: app.coordinator,
			Interviewer: app.interviewer,
			Judge:       app.judge,
			Store:       app.store,
		})
		log.Fatal(srv.Run())
	}

	if err := runOnce(cfg, app, flags); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() cliFlags {
	var flags cliFlags

	flag.StringVar(&flags.configPath, "config", "", "Path to config file")
	flag.BoolVar(&flags.serve, "serve", false, "Run the HTTP/WebSocket server")
	flag.StringVar(&flags.userID, "user", "cli", "User ID for this run")
	flag.StringVar(&flags.resumePath, "resume", "", "Path to a resume text file")
	flag.StringVar(&flags.jobPath, "job", "", "Path to a job description text file")
	flag.StringVar(&flags.linkedinLink, "linkedin", "", "LinkedIn profile URL")
	flag.StringVar(&flags.githubLink, "github", "", "GitHub profile URL")
	flag.StringVar(&flags.portfolioLink, "portfolio", "", "Portfolio URL")
	flag.IntVar(&flags.numQuestions, "num-questions", 0, "Number of questions to generate")
	flag.BoolVar(&flags.interview, "interview", false, "Start a terminal mock interview after preparation")
	flag.IntVar(&flags.duration, "duration", 0, "Interview duration in minutes")
	flag.Parse()

	return flags
}

// app bundles the wired pipeline for both CLI and server modes.
type app struct {
	store       types.Store
	coordinator *workflow.Coordinator
	interviewer *agents.Interviewer
	judge       *agents.Judge
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func buildApp(cfg *cfgPkg.Config) (*app, error) {
	factory := llm.NewFactory(cfg)

	clients := make(map[string]*llm.Client)
	for _, agent := range []string{
		cfgPkg.AgentSummarizer, cfgPkg.AgentSearch, cfgPkg.AgentQuestions,
		cfgPkg.AgentAnswers, cfgPkg.AgentInterviewer, cfgPkg.AgentJudge,
	} {
		client, err := factory.ForAgent(agent)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s client: %v", agent, err)
		}
		clients[agent] = client
	}

	var st types.Store
	if cfg.Database.URL != "" {
		s, err := store.NewWithConfig(store.StoreConfig{
			ConnString: cfg.Database.URL,
			VectorDim:  cfg.Database.Embedding.VectorDim,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize store: %v", err)
		}
		st = s
	}

	var embedder types.Embedder
	if emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider: cfg.Database.Embedding.Provider,
		Model:    cfg.Database.Embedding.Model,
		APIKey:   cfg.LLM.GeminiAPIKey,
		BaseURL:  cfg.Database.Embedding.BaseURL,
	}); err != nil {
		log.Printf("embedder unavailable, QA retrieval disabled: %v", err)
	} else {
		embedder = emb
	}

	var provider types.SearchProvider
	if cfg.Search.TavilyAPIKey != "" {
		tavily, err := search.NewTavilyWithConfig(search.TavilyConfig{
			APIKey:    cfg.Search.TavilyAPIKey,
			Depth:     cfg.Search.Depth,
			RateLimit: cfg.Search.RateLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tavily client: %v", err)
		}
		provider = tavily
	} else {
		provider = search.NewDDGWithConfig(search.DDGConfig{RateLimit: cfg.Search.RateLimit})
	}

	interviewer := agents.NewInterviewer(clients[cfgPkg.AgentInterviewer], st, embedder, cfg.Interview.ContextQAs)
	judge := agents.NewJudge(clients[cfgPkg.AgentJudge], st, provider)

	coordinator, err := workflow.NewCoordinator(workflow.CoordinatorConfig{
		Summarizer: agents.NewSummarizer(clients[cfgPkg.AgentSummarizer]),
		Search:     agents.NewSearchAgent(clients[cfgPkg.AgentSearch], provider, cfg.Search.MaxResults),
		Questions:  agents.NewQuestionGenerator(clients[cfgPkg.AgentQuestions], st),
		Answers:    agents.NewAnswerGenerator(clients[cfgPkg.AgentAnswers], st, embedder),
		Github: github.NewWithConfig(github.AnalyzerConfig{
			Token:    cfg.Github.Token,
			MaxRepos: cfg.Github.MaxRepos,
		}),
		Scraper: scraper.NewWithConfig(scraper.ScraperConfig{
			RateLimit:      cfg.Scraper.RateLimit,
			Timeout:        time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
			MaxContentSize: cfg.Scraper.MaxContentSize,
		}),
		Store:        st,
		NumQuestions: cfg.Workflow.NumQuestions,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		store:       st,
		coordinator: coordinator,
		interviewer: interviewer,
		judge:       judge,
	}, nil
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// runOnce runs the preparation pipeline for one candidate from files on
// disk, printing the generated questions, then optionally drops into a
// terminal mock interview.
func runOnce(cfg *cfgPkg.Config, app *app, flags cliFlags) error {
	if flags.resumePath == "" || flags.jobPath == "" {
		return fmt.Errorf("both -resume and -job are required (or use -serve)")
	}

	resume, err := os.ReadFile(flags.resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %v", err)
	}
	job, err := os.ReadFile(flags.jobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %v", err)
	}

	ctx := context.Background()

	stageNames := map[string]string{
		"summarizer":         "Summarized your background",
		"search":             "Collected industry questions",
		"question_generator": "Generated interview questions",
		"answer_generator":   "Wrote personalized answers",
	}

	color.Blue("\nPreparing your interview...")
	spinner := getSpinner("Running preparation agents...")
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				spinner.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	result, err := app.coordinator.Run(ctx, workflow.Request{
		UserID:         flags.userID,
		ResumeText:     string(resume),
		JobDescription: string(job),
		LinkedinLink:   flags.linkedinLink,
		GithubLink:     flags.githubLink,
		PortfolioLink:  flags.portfolioLink,
		NumQuestions:   flags.numQuestions,
	})
	close(done)
	spinner.Finish()
	fmt.Print("\r")
	if err != nil {
		return err
	}

	for _, stage := range result.CompletedAgents {
		if name, ok := stageNames[stage]; ok {
			color.Green("✓ %s", name)
		}
	}
	color.Green("✓ Done in %.1fs (workflow %s)\n", result.ExecutionSeconds, result.WorkflowID)

	color.Cyan("Role: %s", result.Title)
	color.Cyan("Generated %d questions:\n", len(result.QAs))
	for i, qa := range result.QAs {
		fmt.Printf("%d. %s\n", i+1, qa.Question)
		if len(qa.Tags) > 0 {
			color.Yellow("   [%s]", strings.Join(qa.Tags, ", "))
		}
	}

	if !flags.interview {
		return nil
	}
	return runTerminalInterview(cfg, app, flags, result.WorkflowID)
}

// runTerminalInterview runs the mock interview in the terminal, with
// the interviewer's replies streamed as they generate.
func runTerminalInterview(cfg *cfgPkg.Config, app *app, flags cliFlags, workflowID string) error {
	duration := time.Duration(cfg.Interview.DefaultDurationMinutes) * time.Minute
	if flags.duration > 0 {
		duration = time.Duration(flags.duration) * time.Minute
	}

	ctx := context.Background()
	session, greeting, err := app.interviewer.StartSession(ctx, agents.SessionParams{
		UserID:     flags.userID,
		WorkflowID: workflowID,
		Duration:   duration,
	})
	if err != nil {
		return fmt.Errorf("failed to start interview: %v", err)
	}

	color.Cyan("\nMock interview started (%d minutes, type 'exit' to finish)\n", int(duration.Minutes()))

	userPrompt := color.New(color.FgGreen).PrintfFunc()
	interviewerPrompt := color.New(color.FgCyan).PrintfFunc()

	interviewerPrompt("Interviewer: %s\n", greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for !session.Expired() {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if strings.ToLower(answer) == "exit" {
			break
		}

		interviewerPrompt("\nInterviewer: ")
		if _, err := app.interviewer.Reply(ctx, session, answer, func(chunk string) error {
			interviewerPrompt("%s", chunk)
			return nil
		}); err != nil {
			color.Red("\nError: %v", err)
			continue
		}
		fmt.Println()
	}

	if err := app.interviewer.Finish(ctx, session); err != nil {
		log.Printf("failed to save interview: %v", err)
	}

	spinner := getSpinner("Evaluating your interview...")
	feedback, err := app.judge.Evaluate(ctx, session)
	spinner.Finish()
	fmt.Print("\r")
	if err != nil {
		return fmt.Errorf("failed to evaluate interview: %v", err)
	}

	color.Blue("\nFeedback")
	fmt.Println(feedback.Summary)
	if len(feedback.Strengths) > 0 {
		color.Green("\nStrengths:")
		for _, s := range feedback.Strengths {
			fmt.Println("- " + s)
		}
	}
	if len(feedback.AreasForImprovement) > 0 {
		color.Yellow("\nAreas for improvement:")
		for _, a := range feedback.AreasForImprovement {
			fmt.Println("- " + a)
		}
	}
	if len(feedback.Resources) > 0 {
		color.Cyan("\nResources:")
		for _, r := range feedback.Resources {
			fmt.Printf("- %s: %s\n", r.Title, r.Link)
		}
	}
	return nil
}
