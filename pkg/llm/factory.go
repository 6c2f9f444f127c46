package llm

import (
	"fmt"

	"github.com/aiview/aiview/pkg/config"
)

// Model tiers. Budget models handle bulk summarization and search
// organization, premium models handle question quality, live interview
// replies and feedback.
const (
	TierBudget  = "budget"
	TierPremium = "premium"
)

var defaultModels = map[string]map[string]string{
	ProviderClaude: {
		TierBudget:  "claude-3-5-haiku-20241022",
		TierPremium: "claude-3-5-sonnet-20241022",
	},
	ProviderGemini: {
		TierBudget:  "gemini-1.5-flash",
		TierPremium: "gemini-1.5-pro",
	},
	ProviderOllama: {
		TierBudget:  "llama3.1",
		TierPremium: "llama3.1",
	},
}

// DefaultModel returns the stock model name for a provider and tier.
func DefaultModel(provider, tier string) string {
	if tiers, ok := defaultModels[provider]; ok {
		return tiers[tier]
	}
	return ""
}

// Factory builds per-agent clients, honoring the per-agent provider
// overrides in the configuration.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// tier and token budget per agent, mirroring the original cost split.
var agentTiers = map[string]struct {
	tier      string
	maxTokens int
}{
	config.AgentSummarizer: {TierBudget, 8000},
	config.AgentSearch:     {TierBudget, 6000},
	config.AgentQuestions:  {TierPremium, 6000},
	config.AgentAnswers:    {TierPremium, 8000},
	config.AgentJudge:      {TierPremium, 4000},
}

// ForAgent builds a client for one of the config.Agent* names.
func (f *Factory) ForAgent(agent string) (*Client, error) {
	provider := f.cfg.AgentProvider(agent)

	tiers, ok := agentTiers[agent]
	if !ok && agent != config.AgentInterviewer {
		return nil, fmt.Errorf("unknown agent: %s", agent)
	}

	cc := ClientConfig{
		Provider:    provider,
		APIKey:      f.apiKey(provider),
		Temperature: f.cfg.LLM.Temperature,
		BaseURL:     f.cfg.LLM.OllamaURL,
	}

	if agent == config.AgentInterviewer {
		// Interview replies stay short so the conversation keeps moving.
		cc.Model = f.model(provider, TierPremium)
		cc.MaxTokens = f.cfg.Interview.MaxTokens
	} else {
		cc.Model = f.model(provider, tiers.tier)
		cc.MaxTokens = tiers.maxTokens
	}

	return NewWithConfig(cc)
}

func (f *Factory) apiKey(provider string) string {
	switch provider {
	case ProviderClaude:
		return f.cfg.LLM.AnthropicAPIKey
	case ProviderGemini:
		return f.cfg.LLM.GeminiAPIKey
	}
	return ""
}

// model uses the configured model names only when they belong to the
// selected provider; a per-agent provider override falls back to that
// provider's stock models.
func (f *Factory) model(provider, tier string) string {
	if provider == f.cfg.LLM.Provider {
		if tier == TierBudget && f.cfg.LLM.BudgetModel != "" {
			return f.cfg.LLM.BudgetModel
		}
		if tier == TierPremium && f.cfg.LLM.PremiumModel != "" {
			return f.cfg.LLM.PremiumModel
		}
	}
	return DefaultModel(provider, tier)
}
