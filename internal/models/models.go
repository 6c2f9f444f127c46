package models

// PersonalSummary is the summarizer agent's structured view of a candidate.
// Field names follow the wire format stored alongside each workflow.
type PersonalSummary struct {
	Title          string `json:"title"`
	ResumeInfo     string `json:"resumeInfo"`
	LinkedinInfo   string `json:"linkedinInfo"`
	GithubInfo     string `json:"githubInfo"`
	PortfolioInfo  string `json:"portfolioInfo"`
	AdditionalInfo string `json:"additionalInfo"`
	JobDescription string `json:"jobDescription"`
}

// PersonalExperience is the persisted candidate background for a workflow.
type PersonalExperience struct {
	ResumeInfo     string `json:"resumeInfo"`
	LinkedinInfo   string `json:"linkedinInfo"`
	GithubInfo     string `json:"githubInfo"`
	PortfolioInfo  string `json:"portfolioInfo"`
	AdditionalInfo string `json:"additionalInfo"`
	JobDescription string `json:"jobDescription"`
}

// Experience extracts the persistable part of a summary.
func (s PersonalSummary) Experience() PersonalExperience {
	return PersonalExperience{
		ResumeInfo:     s.ResumeInfo,
		LinkedinInfo:   s.LinkedinInfo,
		GithubInfo:     s.GithubInfo,
		PortfolioInfo:  s.PortfolioInfo,
		AdditionalInfo: s.AdditionalInfo,
		JobDescription: s.JobDescription,
	}
}

// RecommendedQA is one prepared interview question with a personalized answer.
type RecommendedQA struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// IndustryFAQ is the search agent's organized view of questions found on the web.
type IndustryFAQ struct {
	CommonQuestions     []string `json:"commonQuestions"`
	TechnicalQuestions  []string `json:"technicalQuestions"`
	BehavioralQuestions []string `json:"behavioralQuestions"`
	InterviewTips       []string `json:"interviewTips"`
	Sources             []string `json:"sources,omitempty"`
}

// SearchResult is a single web search hit from Tavily or DuckDuckGo.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// TranscriptEntry is one turn of the live interview.
// Role is "system", "user" or "AI".
type TranscriptEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Interview is a finished interview transcript.
type Interview struct {
	Transcript      []TranscriptEntry `json:"transcript"`
	DurationMinutes int               `json:"duration_minutes"`
}

// Resource is a supplementary learning link attached to feedback.
type Resource struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Feedback is the judge agent's verdict on an interview.
type Feedback struct {
	Summary             string     `json:"summary"`
	Strengths           []string   `json:"strengths"`
	AreasForImprovement []string   `json:"areasForImprovement"`
	Resources           []Resource `json:"resources"`
}
