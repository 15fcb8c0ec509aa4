package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/annotate"
	"github.com/aretw0/annotate/internal/logging"
	"github.com/aretw0/annotate/internal/presentation/graph"
	"github.com/aretw0/annotate/pkg/domain"
	"github.com/aretw0/annotate/pkg/hook"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Interpreter defines the operations the HTTP adapter drives.
type Interpreter interface {
	Run(ctx context.Context, out io.Writer, vars map[string]int64) (*domain.Frame, error)
	Install(id string, kind hook.Kind) error
	Remove(id string) (bool, error)
	Hooked() []hook.Info
	Program() *domain.Program
}

// Server exposes an Interpreter's hooks and runs over HTTP.
type Server struct {
	Interpreter Interpreter
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Vars map[string]int64 `json:"vars,omitempty"`
}

// RunResponse is the result of POST /run.
type RunResponse struct {
	Output string           `json:"output"`
	Steps  int              `json:"steps"`
	Vars   map[string]int64 `json:"vars"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler. A nil gatherer disables /metrics.
func NewHandler(interp Interpreter, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{Interpreter: interp, Gatherer: gatherer, Logger: logger}

	r := chi.NewRouter()
	r.Get("/hooks", s.ListHooks)
	r.Put("/hooks/{node}", s.InstallHook)
	r.Delete("/hooks/{node}", s.RemoveHook)
	r.Post("/run", s.Run)
	r.Get("/graph", s.GetGraph)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListHooks handles GET /hooks.
func (s *Server) ListHooks(w http.ResponseWriter, r *http.Request) {
	infos := s.Interpreter.Hooked()
	if infos == nil {
		infos = []hook.Info{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// InstallHook handles PUT /hooks/{node}?kind=count.
func (s *Server) InstallHook(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node")
	kind, err := hook.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.Interpreter.Install(nodeID, kind); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.Logger.Info("hook installed", "node", nodeID, "kind", kind)
	s.writeJSON(w, http.StatusOK, hook.Info{NodeID: nodeID, Kind: kind})
}

// RemoveHook handles DELETE /hooks/{node}.
func (s *Server) RemoveHook(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "node")
	removed, err := s.Interpreter.Remove(nodeID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if !removed {
		// Already gone: removal is idempotent.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.Logger.Info("hook removed", "node", nodeID)
	w.WriteHeader(http.StatusNoContent)
}

// Run handles POST /run.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	var out bytes.Buffer
	frame, err := s.Interpreter.Run(r.Context(), &out, body.Vars)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, RunResponse{
		Output: out.String(),
		Steps:  frame.Steps,
		Vars:   frame.Vars,
	})
}

// GetGraph handles GET /graph, returning a Mermaid diagram.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	overlay := &graph.GraphOverlay{}
	for _, info := range s.Interpreter.Hooked() {
		overlay.Annotated = append(overlay.Annotated, info.NodeID)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, graph.GenerateMermaid(s.Interpreter.Program(), overlay)); err != nil {
		s.Logger.Error("graph write failed", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, annotate.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusUnprocessableEntity
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.Logger.Debug("request failed", "status", status, "err", err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
