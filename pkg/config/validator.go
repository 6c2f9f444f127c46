package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validProvider(p string) bool {
	switch p {
	case "claude", "gemini", "ollama":
		return true
	}
	return false
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if !validProvider(c.LLM.Provider) {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider %q, must be claude, gemini or ollama", c.LLM.Provider),
		})
	}

	switch c.LLM.Provider {
	case "claude":
		if c.LLM.AnthropicAPIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.anthropic_api_key",
				Message: "Anthropic API key is required when provider is claude",
			})
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.gemini_api_key",
				Message: "Gemini API key is required when provider is gemini",
			})
		}
	}

	for agent, provider := range c.LLM.AgentProviders {
		if !validProvider(provider) {
			errors = append(errors, ValidationError{
				Field:   "llm.agent_providers." + agent,
				Message: fmt.Sprintf("unknown provider %q", provider),
			})
		}
	}

	if c.LLM.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be positive",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.Embedding.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.embedding.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	// Validate Search config
	if c.Search.MaxResults < 1 {
		errors = append(errors, ValidationError{
			Field:   "search.max_results",
			Message: "max_results must be positive",
		})
	}

	if c.Search.Depth != "basic" && c.Search.Depth != "advanced" {
		errors = append(errors, ValidationError{
			Field:   "search.depth",
			Message: "depth must be basic or advanced",
		})
	}

	// Validate Scraper config
	if c.Scraper.MaxDepth < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_depth",
			Message: "max_depth must be positive",
		})
	}

	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate Interview config
	if c.Interview.DefaultDurationMinutes < 1 {
		errors = append(errors, ValidationError{
			Field:   "interview.default_duration_minutes",
			Message: "default_duration_minutes must be positive",
		})
	}

	if c.Interview.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "interview.max_tokens",
			Message: "max_tokens must be positive",
		})
	}

	// Validate Workflow config
	if c.Workflow.NumQuestions < 1 {
		errors = append(errors, ValidationError{
			Field:   "workflow.num_questions",
			Message: "num_questions must be positive",
		})
	}

	return errors
}
