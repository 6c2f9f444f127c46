package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

// answerBatchSize bounds how many questions go into one model call so
// long banks do not overflow the output token budget.
const answerBatchSize = 10

// AnswerGenerator writes personalized answers for generated questions
// and persists the finished QA bank with embeddings for retrieval
// during the live interview.
type AnswerGenerator struct {
	llm      types.Generator
	store    types.Store
	embedder types.Embedder
}

func NewAnswerGenerator(llm types.Generator, store types.Store, embedder types.Embedder) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, store: store, embedder: embedder}
}

// GenerateAndSave answers every question and writes the bank to the
// store. Embedding failures degrade retrieval but never fail the run.
func (g *AnswerGenerator) GenerateAndSave(ctx context.Context, userID, workflowID string, questions []models.RecommendedQA, summary *models.PersonalSummary) ([]models.RecommendedQA, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to answer")
	}
	if summary == nil {
		return nil, fmt.Errorf("personal summary is required")
	}

	var answered []models.RecommendedQA
	for start := 0; start < len(questions); start += answerBatchSize {
		end := start + answerBatchSize
		if end > len(questions) {
			end = len(questions)
		}

		batch, err := g.answerBatch(ctx, questions[start:end], summary)
		if err != nil {
			return nil, fmt.Errorf("failed to answer questions %d-%d: %v", start+1, end, err)
		}
		answered = append(answered, batch...)
	}

	embeddings := g.embedQuestions(ctx, answered)

	if g.store != nil {
		if err := g.store.SaveRecommendedQAs(ctx, userID, workflowID, answered, embeddings); err != nil {
			return nil, fmt.Errorf("failed to save recommended QAs: %v", err)
		}
	}
	return answered, nil
}

func (g *AnswerGenerator) answerBatch(ctx context.Context, batch []models.RecommendedQA, summary *models.PersonalSummary) ([]models.RecommendedQA, error) {
	raw, err := g.llm.Generate(ctx, answerGenerationPrompt, buildAnswerPrompt(batch, summary))
	if err != nil {
		return nil, err
	}

	answered, err := decodeQAList(raw)
	if err != nil {
		return nil, err
	}

	// Keep the original question text and tags authoritative. The model
	// only contributes answers, matched by position.
	if len(answered) != len(batch) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(batch), len(answered))
	}
	result := make([]models.RecommendedQA, len(batch))
	for i, q := range batch {
		result[i] = models.RecommendedQA{
			Question: q.Question,
			Answer:   answered[i].Answer,
			Tags:     q.Tags,
		}
	}
	return result, nil
}

func (g *AnswerGenerator) embedQuestions(ctx context.Context, qas []models.RecommendedQA) [][]float32 {
	if g.embedder == nil {
		return nil
	}

	texts := make([]string, len(qas))
	for i, qa := range qas {
		texts[i] = qa.Question
	}

	embeddings, err := g.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		log.Printf("failed to embed questions, retrieval disabled for this workflow: %v", err)
		return nil
	}
	if len(embeddings) != len(qas) {
		log.Printf("embedding count mismatch: %d texts, %d vectors", len(qas), len(embeddings))
		return nil
	}
	return embeddings
}

func buildAnswerPrompt(batch []models.RecommendedQA, summary *models.PersonalSummary) string {
	var b strings.Builder

	b.WriteString("## Candidate Background\n")
	b.WriteString("Target role: " + summary.Title + "\n")
	b.WriteString("Resume: " + summary.ResumeInfo + "\n")
	if summary.GithubInfo != "" {
		b.WriteString("GitHub: " + summary.GithubInfo + "\n")
	}
	if summary.PortfolioInfo != "" {
		b.WriteString("Portfolio: " + summary.PortfolioInfo + "\n")
	}
	if summary.AdditionalInfo != "" {
		b.WriteString("Additional: " + summary.AdditionalInfo + "\n")
	}
	b.WriteString("\n## Job Description\n" + summary.JobDescription + "\n")

	b.WriteString("\n## Questions\n")
	for i, q := range batch {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, q.Question))
		if len(q.Tags) > 0 {
			b.WriteString(" [" + strings.Join(q.Tags, ", ") + "]")
		}
		b.WriteString("\n")
	}
	return b.String()
}
