package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiview/aiview/internal/models"
)

func TestGenerateAndSaveAnswers(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`[
		{"question": "What is a goroutine?", "answer": "A lightweight thread managed by the Go runtime.", "tags": ["technical"]},
		{"question": "Tell me about a conflict.", "answer": "In my payments project I disagreed with...", "tags": ["behavioral"]}
	]`}}
	store := newFakeStore()
	embedder := &fakeEmbedder{}

	questions := []models.RecommendedQA{
		{Question: "What is a goroutine?", Tags: []string{"technical"}},
		{Question: "Tell me about a conflict.", Tags: []string{"behavioral"}},
	}

	g := NewAnswerGenerator(gen, store, embedder)
	qas, err := g.GenerateAndSave(context.Background(), "u1", "w1", questions, testSummary())
	require.NoError(t, err)

	require.Len(t, qas, 2)
	assert.Equal(t, "What is a goroutine?", qas[0].Question)
	assert.Equal(t, "A lightweight thread managed by the Go runtime.", qas[0].Answer)
	assert.Equal(t, []string{"technical"}, qas[0].Tags)

	// The bank and its embeddings are persisted.
	saved := store.qas[key("u1", "w1")]
	require.Len(t, saved, 2)
	assert.Len(t, store.embeddings[key("u1", "w1")], 2)
	assert.Equal(t, 1, embedder.calls)
}

func TestGenerateAndSaveAnswersBatches(t *testing.T) {
	// 12 questions split into batches of 10 and 2.
	batch1 := "["
	for i := 0; i < 10; i++ {
		if i > 0 {
			batch1 += ","
		}
		batch1 += fmt.Sprintf(`{"question": "Q%d", "answer": "A%d"}`, i, i)
	}
	batch1 += "]"
	batch2 := `[{"question": "Q10", "answer": "A10"}, {"question": "Q11", "answer": "A11"}]`

	gen := &fakeGenerator{responses: []string{batch1, batch2}}

	var questions []models.RecommendedQA
	for i := 0; i < 12; i++ {
		questions = append(questions, models.RecommendedQA{Question: fmt.Sprintf("Q%d", i)})
	}

	g := NewAnswerGenerator(gen, nil, nil)
	qas, err := g.GenerateAndSave(context.Background(), "u1", "w1", questions, testSummary())
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
	require.Len(t, qas, 12)
	assert.Equal(t, "A11", qas[11].Answer)
}

func TestGenerateAndSaveAnswersCountMismatch(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`[{"question": "Q1", "answer": "A1"}]`}}

	questions := []models.RecommendedQA{
		{Question: "Q1"},
		{Question: "Q2"},
	}

	g := NewAnswerGenerator(gen, nil, nil)
	_, err := g.GenerateAndSave(context.Background(), "u1", "w1", questions, testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 answers, got 1")
}

func TestGenerateAndSaveAnswersEmbedderFailureNonFatal(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`[{"question": "Q1", "answer": "A1"}]`}}
	store := newFakeStore()
	embedder := &fakeEmbedder{err: fmt.Errorf("ollama unreachable")}

	g := NewAnswerGenerator(gen, store, embedder)
	qas, err := g.GenerateAndSave(context.Background(), "u1", "w1",
		[]models.RecommendedQA{{Question: "Q1"}}, testSummary())
	require.NoError(t, err)

	assert.Len(t, qas, 1)
	assert.Nil(t, store.embeddings[key("u1", "w1")])
}

func TestGenerateAndSaveAnswersRequiresQuestions(t *testing.T) {
	g := NewAnswerGenerator(&fakeGenerator{}, nil, nil)
	_, err := g.GenerateAndSave(context.Background(), "u1", "w1", nil, testSummary())
	assert.ErrorContains(t, err, "no questions to answer")
}
