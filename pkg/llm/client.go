package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/aiview/aiview/internal/types"
)

// Supported providers.
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

const jsonInstruction = "\n\nYou MUST respond with valid JSON only. No additional text or explanation."

// ClientConfig represents the configuration for an LLM client.
type ClientConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string // Ollama server URL
}

// Client wraps a hosted LLM behind a common generate/chat surface.
type Client struct {
	config ClientConfig
	model  llms.Model
}

// NewWithConfig creates a new Client for the configured provider.
func NewWithConfig(config ClientConfig) (*Client, error) {
	if config.Provider == "" {
		config.Provider = ProviderClaude
	}
	if config.Model == "" {
		config.Model = DefaultModel(config.Provider, TierPremium)
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4000
	}
	if config.Temperature <= 0 || config.Temperature > 1 {
		config.Temperature = 0.3
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	var model llms.Model
	var err error
	switch config.Provider {
	case ProviderClaude:
		if config.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(config.APIKey),
			anthropic.WithModel(config.Model),
		)
	case ProviderGemini:
		if config.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		model, err = googleai.New(context.Background(),
			googleai.WithAPIKey(config.APIKey),
			googleai.WithDefaultModel(config.Model),
		)
	case ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Client{
		config: config,
		model:  model,
	}, nil
}

// Provider returns the provider this client was built for.
func (c *Client) Provider() string {
	return c.config.Provider
}

// Generate produces a single text completion for a system + user prompt.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	content := promptContent(system, prompt)

	response, err := c.model.GenerateContent(ctx, content,
		llms.WithMaxTokens(c.config.MaxTokens),
		llms.WithTemperature(c.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate error: %w", err)
	}
	return firstChoice(response)
}

// GenerateJSON asks the model for JSON and unmarshals the reply into out.
// The reply is run through the extraction ladder in ExtractJSON, so fenced
// or prose-wrapped JSON is still recovered.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, out interface{}) error {
	text, err := c.Generate(ctx, system+jsonInstruction, prompt)
	if err != nil {
		return err
	}
	return ExtractJSON(text, out)
}

// Chat generates a reply for a multi-turn conversation.
func (c *Client) Chat(ctx context.Context, system string, turns []types.Turn) (string, error) {
	response, err := c.model.GenerateContent(ctx, chatContent(system, turns),
		llms.WithMaxTokens(c.config.MaxTokens),
		llms.WithTemperature(c.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	return firstChoice(response)
}

// StreamChat streams a reply for a multi-turn conversation, invoking fn for
// every chunk. The full accumulated reply is returned once the stream ends.
func (c *Client) StreamChat(ctx context.Context, system string, turns []types.Turn, fn func(chunk string) error) (string, error) {
	var full strings.Builder

	_, err := c.model.GenerateContent(ctx, chatContent(system, turns),
		llms.WithMaxTokens(c.config.MaxTokens),
		llms.WithTemperature(c.config.Temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			full.Write(chunk)
			if fn != nil {
				return fn(string(chunk))
			}
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("stream chat error: %w", err)
	}
	return full.String(), nil
}

func promptContent(system, prompt string) []llms.MessageContent {
	var content []llms.MessageContent
	if system != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, prompt))
	return content
}

func chatContent(system string, turns []types.Turn) []llms.MessageContent {
	var content []llms.MessageContent
	if system != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	for _, turn := range turns {
		role := schema.ChatMessageTypeHuman
		if turn.Role == "assistant" {
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, turn.Content))
	}
	return content
}

func firstChoice(response *llms.ContentResponse) (string, error) {
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}
	return response.Choices[0].Content, nil
}
