package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiview/aiview/pkg/config"
)

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, "claude-3-5-haiku-20241022", DefaultModel(ProviderClaude, TierBudget))
	assert.Equal(t, "claude-3-5-sonnet-20241022", DefaultModel(ProviderClaude, TierPremium))
	assert.Equal(t, "gemini-1.5-flash", DefaultModel(ProviderGemini, TierBudget))
	assert.Equal(t, "", DefaultModel("openai", TierBudget))
}

func TestFactoryModelSelection(t *testing.T) {
	factory := NewFactory(&config.Config{
		LLM: config.LLMConfig{
			Provider:     ProviderClaude,
			BudgetModel:  "claude-custom-budget",
			PremiumModel: "claude-custom-premium",
		},
	})

	// Configured models apply when the provider matches the global one.
	assert.Equal(t, "claude-custom-budget", factory.model(ProviderClaude, TierBudget))
	assert.Equal(t, "claude-custom-premium", factory.model(ProviderClaude, TierPremium))

	// A per-agent provider override falls back to that provider's stock models.
	assert.Equal(t, "gemini-1.5-flash", factory.model(ProviderGemini, TierBudget))
	assert.Equal(t, "gemini-1.5-pro", factory.model(ProviderGemini, TierPremium))
}

func TestFactoryForAgent(t *testing.T) {
	factory := NewFactory(&config.Config{
		LLM: config.LLMConfig{
			Provider:    ProviderOllama,
			Temperature: 0.3,
		},
		Interview: config.InterviewConfig{MaxTokens: 300},
	})

	summarizer, err := factory.ForAgent(config.AgentSummarizer)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, summarizer.Provider())
	assert.Equal(t, 8000, summarizer.config.MaxTokens)

	judge, err := factory.ForAgent(config.AgentJudge)
	require.NoError(t, err)
	assert.Equal(t, 4000, judge.config.MaxTokens)

	// The interviewer keeps its replies short.
	interviewer, err := factory.ForAgent(config.AgentInterviewer)
	require.NoError(t, err)
	assert.Equal(t, 300, interviewer.config.MaxTokens)

	_, err = factory.ForAgent("planner")
	assert.Error(t, err)
}

func TestForAgentProviderOverride(t *testing.T) {
	factory := NewFactory(&config.Config{
		LLM: config.LLMConfig{
			Provider: ProviderOllama,
			AgentProviders: map[string]string{
				config.AgentJudge: ProviderClaude,
			},
		},
		Interview: config.InterviewConfig{MaxTokens: 300},
	})

	// The override points at claude, which needs an API key.
	_, err := factory.ForAgent(config.AgentJudge)
	assert.Error(t, err)

	summarizer, err := factory.ForAgent(config.AgentSummarizer)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, summarizer.Provider())
}
