package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"voicecode/generator"
	"voicecode/logging"
	"voicecode/model"
	"voicecode/preview"
	"voicecode/workspace"
)

// DefaultSessionID names the workspace used by /api/code/generate.
const DefaultSessionID = "default"

type Server struct {
	agent   *generator.Agent
	root    string
	timeout time.Duration
	store   *sessionStore
	logger  *slog.Logger
}

// sessionStore 每个工作区只对应一个 Session，从而串行化同一工作区的写入。
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) getOrCreate(id string, create func() *generator.Session) *generator.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := create()
	s.sessions[id] = sess
	return sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Options configures New.
type Options struct {
	// WorkspaceRoot holds one directory per session.
	WorkspaceRoot string
	// Timeout bounds a whole generate request, model call included.
	Timeout       time.Duration
	Logger        *slog.Logger
}

func New(agent *generator.Agent, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if strings.TrimSpace(opts.WorkspaceRoot) == "" {
		return nil, errors.New("workspace root required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = generator.DefaultTimeout
	}
	return &Server{
		agent:   agent,
		root:    opts.WorkspaceRoot,
		timeout: opts.Timeout,
		store:   newStore(),
		logger:  logging.OrNop(opts.Logger).With("component", "server"),
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("VoiceCode backend is running"))
	})
	r.Route("/api/code", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, "VoiceCode backend is running")
		})
		r.Post("/generate", s.handleDefaultGenerate)
	})
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Get("/{id}", s.handleSessionGet)
		r.Post("/{id}/generate", s.handleSessionGenerate)
		r.Get("/{id}/preview", s.handleSessionPreview)
	})
	return r
}

// --- Handlers ---

type sessionResp struct {
	SessionID string               `json:"session_id"`
	Files     []model.FileArtifact `json:"files"`
	History   []model.Turn         `json:"history"`
}

type generateResp struct {
	SessionID string `json:"session_id"`
	model.Response
}

func (s *Server) handleDefaultGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, s.session(DefaultSessionID))
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	sess := s.session(id)
	if err := sess.Ensure(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResp{SessionID: id, Files: []model.FileArtifact{}, History: sess.History()})
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	files, err := sess.Files(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{SessionID: sess.ID, Files: files, History: sess.History()})
}

func (s *Server) handleSessionGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	s.generate(w, r, sess)
}

func (s *Server) handleSessionPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	files, err := sess.Files(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	page, err := preview.Assemble(files)
	if err != nil {
		writeErr(w, http.StatusNotFound, "preview_unavailable", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req model.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeErr(w, http.StatusBadRequest, "prompt_required", "Prompt is required.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	resp, err := sess.Run(ctx, req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResp{SessionID: sess.ID, Response: resp})
}

// --- Helpers ---

func (s *Server) session(id string) *generator.Session {
	return s.store.getOrCreate(id, func() *generator.Session {
		ws := workspace.Open(filepath.Join(s.root, id), s.logger)
		return generator.NewSession(id, ws, s.agent, s.logger)
	})
}

// lookup finds a live session, or reopens one whose workspace directory is
// still on disk from an earlier run.
func (s *Server) lookup(id string) (*generator.Session, bool) {
	if sess, ok := s.store.get(id); ok {
		return sess, true
	}
	if id != DefaultSessionID {
		if _, err := uuid.Parse(id); err != nil {
			return nil, false
		}
	}
	if info, err := os.Stat(filepath.Join(s.root, id)); err != nil || !info.IsDir() {
		return nil, false
	}
	return s.session(id), true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	s.logger.Error("request failed", "status", status, "code", code, "error", err)
	writeErr(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, generator.ErrPromptRequired):
		return http.StatusBadRequest, "prompt_required"
	case errors.Is(err, generator.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "model_timeout"
	case errors.Is(err, generator.ErrTransport):
		return http.StatusBadGateway, "model_unavailable"
	case errors.Is(err, generator.ErrExtractionFailed):
		return http.StatusBadGateway, "extraction_failed"
	case errors.Is(err, generator.ErrMalformedPayload):
		return http.StatusBadGateway, "malformed_payload"
	case errors.Is(err, generator.ErrEmptyResult):
		return http.StatusBadGateway, "empty_result"
	case errors.Is(err, workspace.ErrStorage):
		return http.StatusInternalServerError, "storage_failure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// corsMiddleware allows any origin, method and header.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		reqHeaders := r.Header.Get("Access-Control-Request-Headers")
		if reqHeaders == "" {
			reqHeaders = "Content-Type"
		}
		h.Set("Access-Control-Allow-Headers", reqHeaders)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
