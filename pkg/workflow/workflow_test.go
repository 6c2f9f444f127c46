package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
	"github.com/aiview/aiview/pkg/agents"
	"github.com/aiview/aiview/pkg/llm"
)

// scriptedLLM returns queued responses in order.
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("scripted llm exhausted")
	}
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, system, prompt string, out interface{}) error {
	text, err := s.Generate(ctx, system, prompt)
	if err != nil {
		return err
	}
	return llm.ExtractJSON(text, out)
}

func (s *scriptedLLM) Chat(ctx context.Context, system string, turns []types.Turn) (string, error) {
	return s.Generate(ctx, system, "")
}

func (s *scriptedLLM) StreamChat(ctx context.Context, system string, turns []types.Turn, fn func(chunk string) error) (string, error) {
	return s.Generate(ctx, system, "")
}

type memStore struct {
	workflows   map[string]string
	experiences map[string]models.PersonalExperience
	qas         map[string][]models.RecommendedQA
}

func newMemStore() *memStore {
	return &memStore{
		workflows:   make(map[string]string),
		experiences: make(map[string]models.PersonalExperience),
		qas:         make(map[string][]models.RecommendedQA),
	}
}

func (s *memStore) SaveWorkflow(ctx context.Context, userID, workflowID, title string) error {
	s.workflows[userID+"/"+workflowID] = title
	return nil
}

func (s *memStore) SavePersonalExperience(ctx context.Context, userID, workflowID string, exp models.PersonalExperience) error {
	s.experiences[userID+"/"+workflowID] = exp
	return nil
}

func (s *memStore) GetPersonalExperience(ctx context.Context, userID, workflowID string) (*models.PersonalExperience, error) {
	return nil, nil
}

func (s *memStore) SaveRecommendedQAs(ctx context.Context, userID, workflowID string, qas []models.RecommendedQA, embeddings [][]float32) error {
	s.qas[userID+"/"+workflowID] = qas
	return nil
}

func (s *memStore) GetRecommendedQAs(ctx context.Context, userID, workflowID string) ([]models.RecommendedQA, error) {
	return s.qas[userID+"/"+workflowID], nil
}

func (s *memStore) SimilarQAs(ctx context.Context, userID, workflowID string, embedding []float32, limit int) ([]models.RecommendedQA, error) {
	return nil, nil
}

func (s *memStore) GetGeneralBQs(ctx context.Context) ([]string, error) {
	return []string{"Why this company?"}, nil
}

func (s *memStore) SaveInterview(ctx context.Context, userID, workflowID, sessionID string, interview models.Interview) error {
	return nil
}

func (s *memStore) SaveFeedback(ctx context.Context, userID, workflowID, sessionID string, feedback models.Feedback) error {
	return nil
}

func (s *memStore) GetFeedback(ctx context.Context, userID, workflowID, sessionID string) (*models.Feedback, error) {
	return nil, nil
}

func (s *memStore) Close() {}

type stubSearch struct {
	results []models.SearchResult
	err     error
}

func (s *stubSearch) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

const summaryJSON = `{
	"title": "Backend Engineer",
	"resumeInfo": "5 years of Go",
	"jobDescription": "Go backend role"
}`

const faqJSON = `{
	"commonQuestions": ["Tell me about yourself"],
	"technicalQuestions": ["What is a goroutine?"]
}`

const questionsJSON = `[
	{"question": "What is a goroutine?", "answer": "", "tags": ["technical"]},
	{"question": "Describe a conflict.", "answer": "", "tags": ["behavioral"]}
]`

const answersJSON = `[
	{"question": "What is a goroutine?", "answer": "A lightweight thread.", "tags": ["technical"]},
	{"question": "Describe a conflict.", "answer": "On my last team...", "tags": ["behavioral"]}
]`

func newTestCoordinator(t *testing.T, generator types.Generator, search types.SearchProvider, store types.Store) *Coordinator {
	t.Helper()

	config := CoordinatorConfig{
		Summarizer:   agents.NewSummarizer(generator),
		Questions:    agents.NewQuestionGenerator(generator, store),
		Answers:      agents.NewAnswerGenerator(generator, store, nil),
		Store:        store,
		NumQuestions: 2,
	}
	if search != nil {
		config.Search = agents.NewSearchAgent(generator, search, 10)
	}

	coordinator, err := NewCoordinator(config)
	require.NoError(t, err)
	return coordinator
}

func TestCoordinatorRun(t *testing.T) {
	generator := &scriptedLLM{responses: []string{summaryJSON, faqJSON, questionsJSON, answersJSON}}
	search := &stubSearch{results: []models.SearchResult{{Title: "Guide", URL: "https://example.com"}}}
	store := newMemStore()

	coordinator := newTestCoordinator(t, generator, search, store)

	result, err := coordinator.Run(context.Background(), Request{
		UserID:         "u1",
		ResumeText:     "resume text",
		JobDescription: "Backend Engineer\nGo role",
	})
	require.NoError(t, err)

	assert.Equal(t, "u1", result.UserID)
	assert.Len(t, result.WorkflowID, 20)
	assert.Equal(t, "Backend Engineer", result.Title)
	assert.Equal(t, []string{"summarizer", "search", "question_generator", "answer_generator"}, result.CompletedAgents)

	require.Len(t, result.QAs, 2)
	assert.Equal(t, "A lightweight thread.", result.QAs[0].Answer)

	// Everything the interview needs later is persisted.
	assert.Equal(t, "Backend Engineer", store.workflows["u1/"+result.WorkflowID])
	assert.Equal(t, "5 years of Go", store.experiences["u1/"+result.WorkflowID].ResumeInfo)
	assert.Len(t, store.qas["u1/"+result.WorkflowID], 2)
}

func TestCoordinatorSearchFailureNonFatal(t *testing.T) {
	// No FAQ response queued: the pipeline must not ask for one.
	generator := &scriptedLLM{responses: []string{summaryJSON, questionsJSON, answersJSON}}
	search := &stubSearch{err: fmt.Errorf("tavily unavailable")}
	store := newMemStore()

	coordinator := newTestCoordinator(t, generator, search, store)

	result, err := coordinator.Run(context.Background(), Request{
		UserID:         "u1",
		ResumeText:     "resume text",
		JobDescription: "Backend Engineer",
	})
	require.NoError(t, err)

	assert.Nil(t, result.IndustryFAQ)
	assert.Equal(t, []string{"summarizer", "question_generator", "answer_generator"}, result.CompletedAgents)
	assert.Len(t, result.QAs, 2)
}

func TestCoordinatorSummarizerFailureFatal(t *testing.T) {
	generator := &scriptedLLM{responses: []string{"not json at all"}}
	store := newMemStore()

	coordinator := newTestCoordinator(t, generator, nil, store)

	_, err := coordinator.Run(context.Background(), Request{
		UserID:         "u1",
		ResumeText:     "resume text",
		JobDescription: "Backend Engineer",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarizer failed")
}

func TestCoordinatorKeepsProvidedWorkflowID(t *testing.T) {
	generator := &scriptedLLM{responses: []string{summaryJSON, questionsJSON, answersJSON}}
	store := newMemStore()

	coordinator := newTestCoordinator(t, generator, nil, store)

	result, err := coordinator.Run(context.Background(), Request{
		UserID:         "u1",
		WorkflowID:     "existing-workflow",
		ResumeText:     "resume text",
		JobDescription: "Backend Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-workflow", result.WorkflowID)
}

func TestCoordinatorRequiresUserID(t *testing.T) {
	coordinator := newTestCoordinator(t, &scriptedLLM{}, nil, newMemStore())

	_, err := coordinator.Run(context.Background(), Request{
		ResumeText:     "resume",
		JobDescription: "role",
	})
	assert.ErrorContains(t, err, "user_id is required")
}

func TestNewCoordinatorValidation(t *testing.T) {
	_, err := NewCoordinator(CoordinatorConfig{})
	assert.Error(t, err)
}
