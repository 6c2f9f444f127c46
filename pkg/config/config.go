package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Agent names used for per-agent provider overrides.
const (
	AgentSummarizer  = "summarizer"
	AgentSearch      = "search"
	AgentQuestions   = "question_generator"
	AgentAnswers     = "answer_generator"
	AgentInterviewer = "interviewer"
	AgentJudge       = "judge"
)

type LLMConfig struct {
	// Provider selects the hosted model family: "claude", "gemini" or "ollama".
	Provider        string  `yaml:"provider"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key"`
	GeminiAPIKey    string  `yaml:"gemini_api_key"`
	OllamaURL       string  `yaml:"ollama_url"`
	BudgetModel     string  `yaml:"budget_model"`
	PremiumModel    string  `yaml:"premium_model"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	// AgentProviders overrides Provider for individual agents,
	// keyed by the Agent* constants above.
	AgentProviders map[string]string `yaml:"agent_providers"`
}

type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "ollama" or "gemini"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	VectorDim int    `yaml:"vector_dim"`
}

type DatabaseConfig struct {
	URL       string          `yaml:"url"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

type SearchConfig struct {
	TavilyAPIKey string  `yaml:"tavily_api_key"`
	MaxResults   int     `yaml:"max_results"`
	Depth        string  `yaml:"depth"`
	RateLimit    float64 `yaml:"rate_limit"`
}

type ScraperConfig struct {
	MaxDepth       int     `yaml:"max_depth"`
	RateLimit      float64 `yaml:"rate_limit"`
	TimeoutSeconds int     `yaml:"timeout_s"`
	MaxContentSize int     `yaml:"max_content_size"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type InterviewConfig struct {
	DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	MaxTokens              int `yaml:"max_tokens"`
	ContextQAs             int `yaml:"context_qas"`
}

type WorkflowConfig struct {
	NumQuestions int `yaml:"num_questions"`
}

type GithubConfig struct {
	Token    string `yaml:"token"`
	MaxRepos int    `yaml:"max_repos"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Server    ServerConfig    `yaml:"server"`
	Interview InterviewConfig `yaml:"interview"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
	Github    GithubConfig    `yaml:"github"`
}

// AgentProvider returns the provider configured for an agent,
// falling back to the global provider.
func (c *Config) AgentProvider(agent string) string {
	if p, ok := c.LLM.AgentProviders[agent]; ok && p != "" {
		return p
	}
	return c.LLM.Provider
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/aiview/config.yaml"),
			"/etc/aiview/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = "claude"
	}
	if config.LLM.BudgetModel == "" {
		switch config.LLM.Provider {
		case "gemini":
			config.LLM.BudgetModel = "gemini-1.5-flash"
		default:
			config.LLM.BudgetModel = "claude-3-5-haiku-20241022"
		}
	}
	if config.LLM.PremiumModel == "" {
		switch config.LLM.Provider {
		case "gemini":
			config.LLM.PremiumModel = "gemini-1.5-pro"
		default:
			config.LLM.PremiumModel = "claude-3-5-sonnet-20241022"
		}
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 4000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.3
	}
	if config.LLM.OllamaURL == "" {
		config.LLM.OllamaURL = "http://localhost:11434"
	}

	if config.Database.Embedding.Provider == "" {
		config.Database.Embedding.Provider = "ollama"
	}
	if config.Database.Embedding.Model == "" {
		config.Database.Embedding.Model = "nomic-embed-text:latest"
	}
	if config.Database.Embedding.BaseURL == "" {
		config.Database.Embedding.BaseURL = config.LLM.OllamaURL
	}
	if config.Database.Embedding.VectorDim == 0 {
		config.Database.Embedding.VectorDim = 768
	}

	if config.Search.MaxResults == 0 {
		config.Search.MaxResults = 10
	}
	if config.Search.Depth == "" {
		config.Search.Depth = "advanced"
	}
	if config.Search.RateLimit == 0 {
		config.Search.RateLimit = 1.0
	}

	if config.Scraper.MaxDepth == 0 {
		config.Scraper.MaxDepth = 1
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.TimeoutSeconds == 0 {
		config.Scraper.TimeoutSeconds = 30
	}
	if config.Scraper.MaxContentSize == 0 {
		config.Scraper.MaxContentSize = 50000
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if config.Interview.DefaultDurationMinutes == 0 {
		config.Interview.DefaultDurationMinutes = 30
	}
	if config.Interview.MaxTokens == 0 {
		config.Interview.MaxTokens = 300
	}
	if config.Interview.ContextQAs == 0 {
		config.Interview.ContextQAs = 4
	}

	if config.Workflow.NumQuestions == 0 {
		config.Workflow.NumQuestions = 50
	}

	if config.Github.MaxRepos == 0 {
		config.Github.MaxRepos = 10
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.GeminiAPIKey = key
	}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		config.Search.TavilyAPIKey = key
	}
	if key := os.Getenv("GITHUB_TOKEN"); key != "" {
		config.Github.Token = key
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.OllamaURL = baseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
}
