package agents

import (
	"context"
	"fmt"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
	"github.com/aiview/aiview/pkg/llm"
)

// fakeGenerator returns queued responses and records prompts.
type fakeGenerator struct {
	responses []string
	err       error

	calls   int
	systems []string
	prompts []string
}

func (f *fakeGenerator) next() string {
	if f.calls > len(f.responses) {
		return ""
	}
	return f.responses[f.calls-1]
}

func (f *fakeGenerator) record(system, prompt string) {
	f.calls++
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.record(system, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.calls > len(f.responses) {
		return "", fmt.Errorf("fake generator exhausted after %d calls", len(f.responses))
	}
	return f.next(), nil
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, prompt string, out interface{}) error {
	text, err := f.Generate(ctx, system, prompt)
	if err != nil {
		return err
	}
	return llm.ExtractJSON(text, out)
}

func (f *fakeGenerator) Chat(ctx context.Context, system string, turns []types.Turn) (string, error) {
	return f.Generate(ctx, system, fmt.Sprintf("%d turns", len(turns)))
}

func (f *fakeGenerator) StreamChat(ctx context.Context, system string, turns []types.Turn, fn func(chunk string) error) (string, error) {
	response, err := f.Chat(ctx, system, turns)
	if err != nil {
		return "", err
	}
	// Stream in two chunks to exercise accumulation.
	if fn != nil && response != "" {
		half := len(response) / 2
		if err := fn(response[:half]); err != nil {
			return "", err
		}
		if err := fn(response[half:]); err != nil {
			return "", err
		}
	}
	return response, nil
}

// fakeStore keeps everything in memory, keyed by user/workflow/session.
type fakeStore struct {
	workflows   map[string]string
	experiences map[string]models.PersonalExperience
	qas         map[string][]models.RecommendedQA
	embeddings  map[string][][]float32
	generalBQs  []string
	interviews  map[string]models.Interview
	feedback    map[string]models.Feedback

	similar []models.RecommendedQA
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workflows:   make(map[string]string),
		experiences: make(map[string]models.PersonalExperience),
		qas:         make(map[string][]models.RecommendedQA),
		embeddings:  make(map[string][][]float32),
		interviews:  make(map[string]models.Interview),
		feedback:    make(map[string]models.Feedback),
	}
}

func key(parts ...string) string {
	k := parts[0]
	for _, p := range parts[1:] {
		k += "/" + p
	}
	return k
}

func (s *fakeStore) SaveWorkflow(ctx context.Context, userID, workflowID, title string) error {
	if s.err != nil {
		return s.err
	}
	s.workflows[key(userID, workflowID)] = title
	return nil
}

func (s *fakeStore) SavePersonalExperience(ctx context.Context, userID, workflowID string, exp models.PersonalExperience) error {
	if s.err != nil {
		return s.err
	}
	s.experiences[key(userID, workflowID)] = exp
	return nil
}

func (s *fakeStore) GetPersonalExperience(ctx context.Context, userID, workflowID string) (*models.PersonalExperience, error) {
	if s.err != nil {
		return nil, s.err
	}
	if exp, ok := s.experiences[key(userID, workflowID)]; ok {
		return &exp, nil
	}
	return nil, nil
}

func (s *fakeStore) SaveRecommendedQAs(ctx context.Context, userID, workflowID string, qas []models.RecommendedQA, embeddings [][]float32) error {
	if s.err != nil {
		return s.err
	}
	s.qas[key(userID, workflowID)] = qas
	s.embeddings[key(userID, workflowID)] = embeddings
	return nil
}

func (s *fakeStore) GetRecommendedQAs(ctx context.Context, userID, workflowID string) ([]models.RecommendedQA, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.qas[key(userID, workflowID)], nil
}

func (s *fakeStore) SimilarQAs(ctx context.Context, userID, workflowID string, embedding []float32, limit int) ([]models.RecommendedQA, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.similar) > limit {
		return s.similar[:limit], nil
	}
	return s.similar, nil
}

func (s *fakeStore) GetGeneralBQs(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.generalBQs, nil
}

func (s *fakeStore) SaveInterview(ctx context.Context, userID, workflowID, sessionID string, interview models.Interview) error {
	if s.err != nil {
		return s.err
	}
	s.interviews[key(userID, workflowID, sessionID)] = interview
	return nil
}

func (s *fakeStore) SaveFeedback(ctx context.Context, userID, workflowID, sessionID string, feedback models.Feedback) error {
	if s.err != nil {
		return s.err
	}
	s.feedback[key(userID, workflowID, sessionID)] = feedback
	return nil
}

func (s *fakeStore) GetFeedback(ctx context.Context, userID, workflowID, sessionID string) (*models.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	if fb, ok := s.feedback[key(userID, workflowID, sessionID)]; ok {
		return &fb, nil
	}
	return nil, nil
}

func (s *fakeStore) Close() {}

// fakeSearch serves canned results and records queries.
type fakeSearch struct {
	results map[string][]models.SearchResult
	all     []models.SearchResult
	err     error
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return f.all, nil
}

// fakeEmbedder returns a fixed-size vector per text.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1, 2}
	}
	return out, nil
}
