package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
)

// Interviewer runs the live mock interview. It loads the candidate's
// background at session start and, when an embedder is available, pulls
// the prepared QAs most relevant to the current exchange into the prompt.
type Interviewer struct {
	llm        types.Generator
	store      types.Store
	embedder   types.Embedder
	contextQAs int
}

func NewInterviewer(llm types.Generator, store types.Store, embedder types.Embedder, contextQAs int) *Interviewer {
	if contextQAs <= 0 {
		contextQAs = 4
	}
	return &Interviewer{llm: llm, store: store, embedder: embedder, contextQAs: contextQAs}
}

// SessionParams configures a new interview session.
type SessionParams struct {
	SessionID  string
	UserID     string
	WorkflowID string
	Duration   time.Duration
}

// StartSession loads the candidate's context, opens a session and
// produces the interviewer's greeting. The greeting is already recorded
// in the transcript when this returns.
func (iv *Interviewer) StartSession(ctx context.Context, params SessionParams) (*Session, string, error) {
	if params.SessionID == "" {
		params.SessionID = NewSessionID()
	}
	if params.Duration <= 0 {
		params.Duration = 30 * time.Minute
	}

	session := &Session{
		ID:         params.SessionID,
		UserID:     params.UserID,
		WorkflowID: params.WorkflowID,
		StartTime:  time.Now(),
		Duration:   params.Duration,
	}

	if iv.store != nil {
		exp, err := iv.store.GetPersonalExperience(ctx, params.UserID, params.WorkflowID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load personal experience: %v", err)
		}
		session.Experience = exp

		qas, err := iv.store.GetRecommendedQAs(ctx, params.UserID, params.WorkflowID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load recommended QAs: %v", err)
		}
		session.QAs = qas
	}

	session.system = buildInterviewerSystem(session.Experience, int(params.Duration.Minutes()))

	session.AppendUser(interviewerIntroMessage)
	greeting, err := iv.llm.Chat(ctx, session.system, session.History())
	if err != nil {
		log.Printf("greeting generation failed, using canned opener: %v", err)
		greeting = interviewerFallbackGreeting
	}
	session.AppendAI(greeting)

	return session, greeting, nil
}

// Reply sends the candidate's message to the model and streams the
// interviewer's response through fn. The full response is recorded in
// the transcript and returned.
func (iv *Interviewer) Reply(ctx context.Context, session *Session, userText string, fn func(chunk string) error) (string, error) {
	session.AppendUser(userText)

	system := session.system
	if hints := iv.relevantQAs(ctx, session, userText); hints != "" {
		system += "\n\n" + hints
	}

	response, err := iv.llm.StreamChat(ctx, system, session.History(), fn)
	if err != nil {
		return "", fmt.Errorf("failed to generate interviewer response: %v", err)
	}
	session.AppendAI(response)
	return response, nil
}

// Finish persists the transcript for the judge. The recorded duration
// is the time actually spent, capped at the allotted duration.
func (iv *Interviewer) Finish(ctx context.Context, session *Session) error {
	if iv.store == nil {
		return nil
	}
	elapsed := int(time.Since(session.StartTime).Minutes())
	if allotted := int(session.Duration.Minutes()); elapsed > allotted {
		elapsed = allotted
	}
	interview := models.Interview{
		Transcript:      session.Transcript(),
		DurationMinutes: elapsed,
	}
	if err := iv.store.SaveInterview(ctx, session.UserID, session.WorkflowID, session.ID, interview); err != nil {
		return fmt.Errorf("failed to save interview: %v", err)
	}
	return nil
}

// relevantQAs finds prepared questions close to the current exchange so
// the interviewer can probe topics the candidate actually prepared for.
// Any failure here just means the turn runs without extra context.
func (iv *Interviewer) relevantQAs(ctx context.Context, session *Session, userText string) string {
	if iv.embedder == nil || iv.store == nil || len(session.QAs) == 0 {
		return ""
	}

	embeddings, err := iv.embedder.CreateEmbedding(ctx, []string{userText})
	if err != nil || len(embeddings) == 0 {
		return ""
	}

	similar, err := iv.store.SimilarQAs(ctx, session.UserID, session.WorkflowID, embeddings[0], iv.contextQAs)
	if err != nil || len(similar) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Prepared questions relevant to the current discussion. Consider asking one as a follow-up:\n")
	for _, qa := range similar {
		b.WriteString("- " + qa.Question + "\n")
	}
	return strings.TrimSpace(b.String())
}

func buildInterviewerSystem(exp *models.PersonalExperience, durationMinutes int) string {
	var b strings.Builder

	b.WriteString("You are a professional interviewer conducting a mock job interview.\n")
	b.WriteString(fmt.Sprintf("The interview lasts about %d minutes.\n", durationMinutes))
	b.WriteString("Ask one question at a time. Keep your responses short and conversational, under three sentences.\n")
	b.WriteString("Follow up on weak or vague answers. Cover technical, behavioral and experience questions.\n")

	if exp != nil {
		b.WriteString("\n## Candidate Background\n")
		if exp.ResumeInfo != "" {
			b.WriteString("Resume: " + exp.ResumeInfo + "\n")
		}
		if exp.GithubInfo != "" {
			b.WriteString("GitHub: " + exp.GithubInfo + "\n")
		}
		if exp.PortfolioInfo != "" {
			b.WriteString("Portfolio: " + exp.PortfolioInfo + "\n")
		}
		if exp.JobDescription != "" {
			b.WriteString("\n## Target Job\n" + exp.JobDescription + "\n")
		}
	}

	return strings.TrimSpace(b.String())
}
