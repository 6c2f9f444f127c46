package types

import (
	"context"

	"github.com/aiview/aiview/internal/models"
)

// Core interfaces

// Generator is the surface of the LLM client the agents depend on.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	GenerateJSON(ctx context.Context, system, prompt string, out interface{}) error
	Chat(ctx context.Context, system string, turns []Turn) (string, error)
	StreamChat(ctx context.Context, system string, turns []Turn, fn func(chunk string) error) (string, error)
}

// Turn is one message of a multi-turn conversation.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Embedder produces vector embeddings for short texts.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchProvider answers web search queries.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// Store persists workflow artifacts.
type Store interface {
	SaveWorkflow(ctx context.Context, userID, workflowID, title string) error
	SavePersonalExperience(ctx context.Context, userID, workflowID string, exp models.PersonalExperience) error
	GetPersonalExperience(ctx context.Context, userID, workflowID string) (*models.PersonalExperience, error)
	SaveRecommendedQAs(ctx context.Context, userID, workflowID string, qas []models.RecommendedQA, embeddings [][]float32) error
	GetRecommendedQAs(ctx context.Context, userID, workflowID string) ([]models.RecommendedQA, error)
	SimilarQAs(ctx context.Context, userID, workflowID string, embedding []float32, limit int) ([]models.RecommendedQA, error)
	GetGeneralBQs(ctx context.Context) ([]string, error)
	SaveInterview(ctx context.Context, userID, workflowID, sessionID string, interview models.Interview) error
	SaveFeedback(ctx context.Context, userID, workflowID, sessionID string, feedback models.Feedback) error
	GetFeedback(ctx context.Context, userID, workflowID, sessionID string) (*models.Feedback, error)
	Close()
}
