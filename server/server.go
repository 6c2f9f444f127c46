package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aiview/aiview/pkg/agents"
	"github.com/aiview/aiview/pkg/config"
	"github.com/aiview/aiview/pkg/workflow"

	"github.com/aiview/aiview/internal/types"
)

// Frame is the wire format of the interview WebSocket. Outbound frames
// carry either a text chunk, a turn marker or a typed event; inbound
// frames carry the candidate's message or a control action.
type Frame struct {
	MimeType     string      `json:"mime_type,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	TurnComplete *bool       `json:"turn_complete,omitempty"`
	Interrupted  *bool       `json:"interrupted,omitempty"`
	Type         string      `json:"type,omitempty"`
	Action       string      `json:"action,omitempty"`
}

type controlPayload struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// Server exposes the preparation pipeline over HTTP and the live
// interview over WebSocket.
type Server struct {
	config      *config.Config
	coordinator *workflow.Coordinator
	interviewer *agents.Interviewer
	judge       *agents.Judge
	sessions    *agents.SessionManager
	store       types.Store
	upgrader    websocket.Upgrader
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Config      *config.Config
	Coordinator *workflow.Coordinator
	Interviewer *agents.Interviewer
	Judge       *agents.Judge
	Store       types.Store
}

func NewWithConfig(sc ServerConfig) *Server {
	s := &Server{
		config:      sc.Config,
		coordinator: sc.Coordinator,
		interviewer: sc.Interviewer,
		judge:       sc.Judge,
		sessions:    agents.NewSessionManager(),
		store:       sc.Store,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/prepare", s.handlePrepare)
	mux.HandleFunc("/v1/questions", s.handleQuestions)
	mux.HandleFunc("/v1/feedback", s.handleFeedback)
	mux.HandleFunc("/ws/interview", s.handleInterview)
	return s.cors(mux)
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	addr := s.config.Server.Addr
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	allowed := s.config.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePrepare runs the full preparation pipeline synchronously and
// returns the generated QA bank.
func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req workflow.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" || req.ResumeText == "" || req.JobDescription == "" {
		writeError(w, http.StatusBadRequest, "user_id, resume_text and job_description are required")
		return
	}

	result, err := s.coordinator.Run(r.Context(), req)
	if err != nil {
		log.Printf("preparation failed for user %s: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	workflowID := r.URL.Query().Get("workflow_id")
	if userID == "" || workflowID == "" {
		writeError(w, http.StatusBadRequest, "user_id and workflow_id are required")
		return
	}

	qas, err := s.store.GetRecommendedQAs(r.Context(), userID, workflowID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if qas == nil {
		writeError(w, http.StatusNotFound, "no questions for this workflow")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"qas": qas})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	workflowID := r.URL.Query().Get("workflow_id")
	sessionID := r.URL.Query().Get("session_id")
	if userID == "" || workflowID == "" || sessionID == "" {
		writeError(w, http.StatusBadRequest, "user_id, workflow_id and session_id are required")
		return
	}

	feedback, err := s.store.GetFeedback(r.Context(), userID, workflowID, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if feedback == nil {
		writeError(w, http.StatusNotFound, "no feedback for this session")
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

// wsWriter serializes frame writes; the reply loop and the expiry
// watchdog both write to the connection.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(frame Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(frame)
}

func (w *wsWriter) sendChunk(text string) error {
	return w.send(Frame{MimeType: "text/plain", Data: text})
}

func (w *wsWriter) sendTurnComplete() error {
	done, interrupted := true, false
	return w.send(Frame{TurnComplete: &done, Interrupted: &interrupted})
}

func (w *wsWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	w.conn.Close()
}

// handleInterview runs one live interview over a WebSocket. The session
// ends when the client sends an end_interview control frame, the
// configured duration runs out or the client disconnects.
func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := query.Get("user_id")
	workflowID := query.Get("workflow_id")
	if userID == "" || workflowID == "" {
		writeError(w, http.StatusBadRequest, "user_id and workflow_id are required")
		return
	}

	duration := time.Duration(s.config.Interview.DefaultDurationMinutes) * time.Minute
	if raw := query.Get("duration_minutes"); raw != "" {
		minutes, err := strconv.ParseFloat(raw, 64)
		if err != nil || minutes <= 0 {
			writeError(w, http.StatusBadRequest, "duration_minutes must be a positive number")
			return
		}
		duration = time.Duration(minutes * float64(time.Minute))
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	writer := &wsWriter{conn: conn}
	defer writer.close()

	ctx := context.Background()
	session, greeting, err := s.interviewer.StartSession(ctx, agents.SessionParams{
		SessionID:  query.Get("session_id"),
		UserID:     userID,
		WorkflowID: workflowID,
		Duration:   duration,
	})
	if err != nil {
		log.Printf("failed to start interview session: %v", err)
		writer.send(Frame{Type: "error", Data: err.Error()})
		return
	}
	s.sessions.Put(session)
	defer s.sessions.Delete(session.ID)

	writer.send(Frame{Type: "session", Data: session.ID})
	writer.sendChunk(greeting)
	writer.sendTurnComplete()

	var endOnce sync.Once
	ended := make(chan struct{})
	end := func(farewell bool) {
		endOnce.Do(func() {
			close(ended)
			s.endInterview(ctx, writer, session, farewell)
			// Close here rather than waiting for the handler to return.
			// The read loop may still be blocked on an idle client.
			writer.close()
		})
	}

	// Expiry watchdog.
	go func() {
		timer := time.NewTimer(time.Until(session.Deadline()))
		defer timer.Stop()
		select {
		case <-timer.C:
			end(true)
		case <-ended:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ended:
			default:
				// Client dropped. Keep the transcript so the interview
				// can still be judged later.
				log.Printf("interview connection lost: %v", err)
				if err := s.interviewer.Finish(ctx, session); err != nil {
					log.Printf("failed to save interrupted interview: %v", err)
				}
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("invalid frame: %v", err)
			continue
		}

		if isEndControl(frame) {
			end(false)
			return
		}

		if frame.MimeType != "" && frame.MimeType != "text/plain" {
			writer.sendChunk("I can only read text messages in this interview. Please type your answer.")
			writer.sendTurnComplete()
			continue
		}

		text, _ := frame.Data.(string)
		if text == "" {
			continue
		}
		if session.Expired() {
			end(true)
			return
		}

		if _, err := s.interviewer.Reply(ctx, session, text, func(chunk string) error {
			return writer.sendChunk(chunk)
		}); err != nil {
			log.Printf("interviewer reply failed: %v", err)
			writer.send(Frame{Type: "error", Data: "failed to generate a response"})
		}
		writer.sendTurnComplete()
	}
}

// endInterview closes out a session: optional farewell, transcript save,
// judge evaluation and the final feedback frame.
func (s *Server) endInterview(ctx context.Context, writer *wsWriter, session *agents.Session, farewell bool) {
	if farewell {
		writer.sendChunk("We are out of time, so let's stop here. Thank you for the interview, you will receive your feedback shortly.")
		writer.sendTurnComplete()
	}

	if err := s.interviewer.Finish(ctx, session); err != nil {
		log.Printf("failed to save interview: %v", err)
	}

	feedback, err := s.judge.Evaluate(ctx, session)
	if err != nil {
		log.Printf("judge evaluation failed for session %s: %v", session.ID, err)
		writer.send(Frame{Type: "error", Data: "feedback generation failed"})
		return
	}
	writer.send(Frame{Type: "end", Data: feedback})
}

func isEndControl(frame Frame) bool {
	if frame.Type == "control" && frame.Action == "end_interview" {
		return true
	}
	// Control frames may also arrive wrapped as a text payload.
	if text, ok := frame.Data.(string); ok {
		var control controlPayload
		if err := json.Unmarshal([]byte(text), &control); err == nil {
			return control.Type == "control" && control.Action == "end_interview"
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
