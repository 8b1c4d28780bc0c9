package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/internal/presentation/graph"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/aretw0/pushdown/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies (definitions and inputs).
const maxBodyBytes = 1 << 20

// Automata is the catalogue the server reads and writes (registry.Registry).
type Automata interface {
	Names(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (*pushdown.Automaton, error)
	Definition(ctx context.Context, name string) (domain.Definition, error)
	Register(ctx context.Context, name string, def domain.Definition) (*pushdown.Automaton, error)
}

// Sessions drives stepwise runs (session.Manager).
type Sessions interface {
	Start(ctx context.Context, sessionID, automaton, input string) (*domain.Session, error)
	Step(ctx context.Context, sessionID string) (*domain.Session, domain.Outcome, error)
	Load(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Server serves the automata and session endpoints.
type Server struct {
	Automata Automata
	Sessions Sessions
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /sessions endpoints.
func WithSessions(sessions Sessions) Option {
	return func(s *Server) {
		s.Sessions = sessions
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server over automata.
func NewServer(automata Automata, opts ...Option) *Server {
	s := &Server{
		Automata: automata,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for automata.
func NewHandler(automata Automata, opts ...Option) http.Handler {
	return NewServer(automata, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/automata", func(r chi.Router) {
		r.Get("/", s.ListAutomata)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetAutomaton)
			r.Put("/", s.PutAutomaton)
			r.Post("/accepts", s.Accepts)
			r.Post("/runs", s.CreateRun)
			r.Get("/graph", s.GetGraph)
		})
	})

	if s.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.DeleteSession)
				r.Post("/step", s.StepSession)
				r.Get("/events", s.SubscribeEvents)
			})
		})
	}

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InputRequest is the body of accepts, runs and session creation.
type InputRequest struct {
	Input string `json:"input"`
	// Automaton and ID are only read by POST /sessions.
	Automaton string `json:"automaton,omitempty"`
	ID        string `json:"id,omitempty"`
}

// AcceptsResponse answers POST /automata/{name}/accepts.
type AcceptsResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// RunResponse answers POST /automata/{name}/runs.
type RunResponse struct {
	pushdown.Result
	Steps  int    `json:"steps"`
	Reason string `json:"reason,omitempty"`
}

// StepResponse answers POST /sessions/{id}/step.
type StepResponse struct {
	Session *domain.Session           `json:"session"`
	Outcome domain.Outcome            `json:"outcome"`
	Diff    *domain.ConfigurationDiff `json:"diff,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pushdown-http",
		"version": strings.TrimSpace(pushdown.Version),
	})
}

// ListAutomata handles the GET /automata request.
func (s *Server) ListAutomata(w http.ResponseWriter, r *http.Request) {
	names, err := s.Automata.Names(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"automata": names})
}

// GetAutomaton handles the GET /automata/{name} request.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	def, err := s.Automata.Definition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := file.Encode(def, file.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// PutAutomaton handles the PUT /automata/{name} request. The body is a JSON
// definition, or YAML when the content type says so.
func (s *Server) PutAutomaton(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.badRequest(w, "Invalid request body", err)
		return
	}

	format := file.FormatJSON
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.Contains(mt, "yaml") {
		format = file.FormatYAML
	}
	def, err := file.Decode(data, format)
	if err != nil {
		s.badRequest(w, "Invalid definition", err)
		return
	}

	a, err := s.Automata.Register(r.Context(), name, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("automaton stored", "automaton", name, "transitions", len(a.Transitions()))

	out, err := file.Encode(a.Definition(), file.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// Accepts handles the POST /automata/{name}/accepts request.
func (s *Server) Accepts(w http.ResponseWriter, r *http.Request) {
	a, body, ok := s.automatonAndInput(w, r)
	if !ok {
		return
	}
	res := a.Run(r.Context(), body.Input)
	if res.Err != nil && !errors.Is(res.Err, domain.ErrRejected) {
		s.writeError(w, r, res.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, AcceptsResponse{Accepted: res.Accepted, Reason: res.Reason()})
}

// CreateRun handles the POST /automata/{name}/runs request. A rejected
// input is a successful run; only step limits and internal faults fail.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	a, body, ok := s.automatonAndInput(w, r)
	if !ok {
		return
	}
	res := a.Run(r.Context(), body.Input)
	if res.Err != nil && !errors.Is(res.Err, domain.ErrRejected) {
		s.writeError(w, r, res.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{
		Result: res,
		Steps:  max(len(res.Configurations)-1, 0),
		Reason: res.Reason(),
	})
}

// GetGraph handles the GET /automata/{name}/graph request. With ?input= the
// run of that input is drawn as an overlay.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	a, err := s.Automata.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var overlay *graph.GraphOverlay
	if q := r.URL.Query(); q.Has("input") {
		if err := pushdown.CheckInput(q.Get("input")); err != nil {
			s.writeError(w, r, err)
			return
		}
		res := a.Run(r.Context(), q.Get("input"))
		overlay = graph.OverlayFromRun(res.Configurations, &res.Accepted)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(a.Definition(), overlay))
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body InputRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.badRequest(w, "Invalid request body", err)
		return
	}
	if body.Automaton == "" {
		s.badRequest(w, "Invalid request body", errors.New("automaton is required"))
		return
	}
	if err := pushdown.CheckInput(body.Input); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.Sessions.Start(r.Context(), body.ID, body.Automaton, body.Input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, sess)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles the POST /sessions/{id}/step request and broadcasts
// the configuration diff to event subscribers.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	before, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, outcome, err := s.Sessions.Step(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := StepResponse{
		Session: sess,
		Outcome: outcome,
		Diff:    domain.Diff(before.Configuration, sess.Configuration),
	}
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) automatonAndInput(w http.ResponseWriter, r *http.Request) (*pushdown.Automaton, InputRequest, bool) {
	var body InputRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.badRequest(w, "Invalid request body", err)
		return nil, body, false
	}
	if err := pushdown.CheckInput(body.Input); err != nil {
		s.writeError(w, r, err)
		return nil, body, false
	}
	a, err := s.Automata.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, body, false
	}
	return a, body, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn(msg, "err", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%s: %v", msg, err)})
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrAutomatonNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, pushdown.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pushdown.ErrInvalidUTF8), errors.Is(err, file.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrInvalidAcceptanceMode),
		errors.Is(err, domain.ErrNondeterministic),
		errors.Is(err, domain.ErrStepLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionFinished), errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request refused", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
