package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aiview/aiview/internal/models"
	"github.com/aiview/aiview/internal/types"
	"github.com/aiview/aiview/pkg/llm"
)

// QuestionGenerator produces customized interview questions from the
// candidate summary, the industry questions found on the web and the
// stored bank of general behavioral questions.
type QuestionGenerator struct {
	llm   types.Generator
	store types.Store
}

func NewQuestionGenerator(llm types.Generator, store types.Store) *QuestionGenerator {
	return &QuestionGenerator{llm: llm, store: store}
}

func (g *QuestionGenerator) Generate(ctx context.Context, summary *models.PersonalSummary, faq *models.IndustryFAQ, numQuestions int) ([]models.RecommendedQA, error) {
	if summary == nil {
		return nil, fmt.Errorf("personal summary is required")
	}
	if numQuestions <= 0 {
		numQuestions = 50
	}

	var generalBQs []string
	if g.store != nil {
		bqs, err := g.store.GetGeneralBQs(ctx)
		if err != nil {
			log.Printf("failed to load general behavioral questions: %v", err)
		} else {
			generalBQs = bqs
		}
	}

	raw, err := g.llm.Generate(ctx, questionGenerationPrompt, g.buildPrompt(summary, faq, generalBQs, numQuestions))
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %v", err)
	}

	questions, err := decodeQAList(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %v", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}
	return questions, nil
}

func (g *QuestionGenerator) buildPrompt(summary *models.PersonalSummary, faq *models.IndustryFAQ, generalBQs []string, numQuestions int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Generate exactly %d interview questions.\n\n", numQuestions))
	b.WriteString("## Candidate Background\n")
	b.WriteString("Target role: " + summary.Title + "\n")
	b.WriteString("Resume: " + summary.ResumeInfo + "\n")
	if summary.GithubInfo != "" {
		b.WriteString("GitHub: " + summary.GithubInfo + "\n")
	}
	if summary.PortfolioInfo != "" {
		b.WriteString("Portfolio: " + summary.PortfolioInfo + "\n")
	}
	b.WriteString("\n## Job Description\n" + summary.JobDescription + "\n")

	if faq != nil {
		b.WriteString("\n## Questions Found on the Web\n")
		writeList(&b, "Common:", faq.CommonQuestions)
		writeList(&b, "Technical:", faq.TechnicalQuestions)
		writeList(&b, "Behavioral:", faq.BehavioralQuestions)
	}
	if len(generalBQs) > 0 {
		b.WriteString("\n## General Behavioral Questions\n")
		writeList(&b, "", generalBQs)
	}

	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	if heading != "" {
		b.WriteString(heading + "\n")
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}

// decodeQAList accepts either a bare JSON array of QA objects or an
// object wrapping one under a "questions" key, which some models emit
// despite instructions.
func decodeQAList(raw string) ([]models.RecommendedQA, error) {
	var direct []qaPayload
	if err := llm.ExtractJSON(raw, &direct); err == nil {
		return normalizeQAs(direct), nil
	}

	var wrapped struct {
		Questions []qaPayload `json:"questions"`
	}
	if err := llm.ExtractJSON(raw, &wrapped); err != nil {
		return nil, err
	}
	return normalizeQAs(wrapped.Questions), nil
}

// qaPayload tolerates tags arriving as a single string instead of an array.
type qaPayload struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Tags     json.RawMessage `json:"tags"`
}

func normalizeQAs(payloads []qaPayload) []models.RecommendedQA {
	qas := make([]models.RecommendedQA, 0, len(payloads))
	for _, p := range payloads {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		qas = append(qas, models.RecommendedQA{
			Question: strings.TrimSpace(p.Question),
			Answer:   strings.TrimSpace(p.Answer),
			Tags:     coerceTags(p.Tags),
		})
	}
	return qas
}

func coerceTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		return tags
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
