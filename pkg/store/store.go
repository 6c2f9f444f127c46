package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/aiview/aiview/internal/models"
)

// StoreConfig represents the configuration for the Postgres store.
type StoreConfig struct {
	ConnString string
	VectorDim  int
}

// Store persists workflow artifacts: personal experiences, recommended
// QAs (with question embeddings for interview-time retrieval), interview
// transcripts and feedback.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config StoreConfig) (*Store, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &Store{
		config: config,
		pool:   pool,
	}

	if err := s.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	ctx := context.Background()

	// Enable pgvector extension
	_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			user_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			title TEXT,
			created_at TIMESTAMPTZ DEFAULT now(),
			PRIMARY KEY (user_id, workflow_id)
		)`,
		`CREATE TABLE IF NOT EXISTS personal_experiences (
			user_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			data JSONB NOT NULL,
			PRIMARY KEY (user_id, workflow_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS recommended_qas (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			tags JSONB NOT NULL DEFAULT '[]',
			embedding vector(%d)
		)`, s.config.VectorDim),
		`CREATE INDEX IF NOT EXISTS recommended_qas_workflow_idx
			ON recommended_qas (user_id, workflow_id)`,
		`CREATE TABLE IF NOT EXISTS general_bqs (
			id BIGSERIAL PRIMARY KEY,
			question TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interviews (
			user_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			transcript JSONB NOT NULL,
			duration_minutes INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			PRIMARY KEY (user_id, workflow_id, session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			user_id TEXT NOT NULL,
			workflow_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			PRIMARY KEY (user_id, workflow_id, session_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	// The vector index is optional; similarity queries on small QA sets
	// work fine without it.
	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS recommended_qas_embedding_idx
		ON recommended_qas
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = %d)`, 100)
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		log.Printf("failed to create embedding index, continuing without it: %v", err)
	}

	return nil
}

func (s *Store) SaveWorkflow(ctx context.Context, userID, workflowID, title string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO workflows (user_id, workflow_id, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workflow_id) DO UPDATE SET title = EXCLUDED.title`,
		userID, workflowID, title)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %v", err)
	}
	return nil
}

func (s *Store) SavePersonalExperience(ctx context.Context, userID, workflowID string, exp models.PersonalExperience) error {
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to marshal personal experience: %v", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO personal_experiences (user_id, workflow_id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workflow_id) DO UPDATE SET data = EXCLUDED.data`,
		userID, workflowID, data)
	if err != nil {
		return fmt.Errorf("failed to save personal experience: %v", err)
	}
	return nil
}

func (s *Store) GetPersonalExperience(ctx context.Context, userID, workflowID string) (*models.PersonalExperience, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM personal_experiences WHERE user_id = $1 AND workflow_id = $2`,
		userID, workflowID).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load personal experience: %v", err)
	}

	var exp models.PersonalExperience
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal personal experience: %v", err)
	}
	return &exp, nil
}

// SaveRecommendedQAs replaces the QA set for a workflow. embeddings may be
// nil, or shorter than qas, when embedding was unavailable.
func (s *Store) SaveRecommendedQAs(ctx context.Context, userID, workflowID string, qas []models.RecommendedQA, embeddings [][]float32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM recommended_qas WHERE user_id = $1 AND workflow_id = $2`,
		userID, workflowID); err != nil {
		return fmt.Errorf("failed to clear recommended QAs: %v", err)
	}

	for i, qa := range qas {
		tags, err := json.Marshal(qa.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %v", err)
		}

		var embedding interface{}
		if i < len(embeddings) && len(embeddings[i]) > 0 {
			embedding = pgvector.NewVector(embeddings[i])
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO recommended_qas (user_id, workflow_id, position, question, answer, tags, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, workflowID, i, qa.Question, qa.Answer, tags, embedding); err != nil {
			return fmt.Errorf("failed to insert recommended QA: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recommended QAs: %v", err)
	}
	return nil
}

func (s *Store) GetRecommendedQAs(ctx context.Context, userID, workflowID string) ([]models.RecommendedQA, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question, answer, tags FROM recommended_qas
		WHERE user_id = $1 AND workflow_id = $2
		ORDER BY position`,
		userID, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommended QAs: %v", err)
	}
	defer rows.Close()

	return scanQAs(rows)
}

// SimilarQAs returns the stored QAs whose question embeddings are closest
// to the given embedding, by cosine distance.
func (s *Store) SimilarQAs(ctx context.Context, userID, workflowID string, embedding []float32, limit int) ([]models.RecommendedQA, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT question, answer, tags FROM recommended_qas
		WHERE user_id = $1 AND workflow_id = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $3
		LIMIT $4`,
		userID, workflowID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar QAs: %v", err)
	}
	defer rows.Close()

	return scanQAs(rows)
}

func scanQAs(rows pgx.Rows) ([]models.RecommendedQA, error) {
	var qas []models.RecommendedQA
	for rows.Next() {
		var qa models.RecommendedQA
		var tags []byte
		if err := rows.Scan(&qa.Question, &qa.Answer, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan recommended QA: %v", err)
		}
		if err := json.Unmarshal(tags, &qa.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %v", err)
		}
		qas = append(qas, qa)
	}
	return qas, rows.Err()
}

func (s *Store) GetGeneralBQs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT question FROM general_bqs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load general BQs: %v", err)
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan general BQ: %v", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) SaveInterview(ctx context.Context, userID, workflowID, sessionID string, interview models.Interview) error {
	transcript, err := json.Marshal(interview.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %v", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO interviews (user_id, workflow_id, session_id, transcript, duration_minutes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, workflow_id, session_id) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			duration_minutes = EXCLUDED.duration_minutes`,
		userID, workflowID, sessionID, transcript, interview.DurationMinutes)
	if err != nil {
		return fmt.Errorf("failed to save interview: %v", err)
	}
	return nil
}

func (s *Store) SaveFeedback(ctx context.Context, userID, workflowID, sessionID string, feedback models.Feedback) error {
	data, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %v", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO feedback (user_id, workflow_id, session_id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, workflow_id, session_id) DO UPDATE SET data = EXCLUDED.data`,
		userID, workflowID, sessionID, data)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %v", err)
	}
	return nil
}

func (s *Store) GetFeedback(ctx context.Context, userID, workflowID, sessionID string) (*models.Feedback, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM feedback WHERE user_id = $1 AND workflow_id = $2 AND session_id = $3`,
		userID, workflowID, sessionID).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %v", err)
	}

	var fb models.Feedback
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feedback: %v", err)
	}
	return &fb, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
