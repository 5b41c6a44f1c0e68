// Package server exposes layout sessions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TFMV/pivotgraph/ingest"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/render"
	"github.com/TFMV/pivotgraph/session"
)

// maxSteps bounds a single synchronous step request.
const maxSteps = 10000

// Config for the server
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server serves the session API and rendered views.
type Server struct {
	cfg     Config
	dataset *models.Dataset
	store   *session.Store
	logger  *log.Logger
	router  chi.Router
}

// New creates a server. Sessions created without an inline dataset use ds.
func New(cfg Config, ds *models.Dataset, store *session.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, dataset: ds, store: store, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/focus", s.handleFocus)
			r.Post("/metric", s.handleMetric)
			r.Post("/filter", s.handleFilter)
			r.Post("/reset", s.handleReset)
			r.Post("/step", s.handleStep)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Get("/view.{format}", s.handleView)
		})
	})
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully and closes every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	defer s.store.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type createRequest struct {
	Dataset json.RawMessage `json:"dataset,omitempty"`
	Focus   string          `json:"focus,omitempty"`
	Metric  models.Metric   `json:"metric,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ds := s.dataset
	if len(req.Dataset) > 0 {
		parsed, err := ingest.NewJSONProcessor().ProcessData(req.Dataset)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		ds = parsed
	}

	sess, err := s.store.Create(ds)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if req.Focus != "" {
		err = sess.Focus(req.Focus, "")
	}
	if err == nil && req.Metric != "" {
		err = sess.SetMetric(req.Metric)
	}
	if err != nil {
		_ = s.store.Delete(sess.ID)
		s.writeError(w, statusFor(err), err)
		return
	}

	s.logger.Debug("session created", "id", sess.ID, "dataset", ds.Name)
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	s.writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": s.store.List()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Primary   string `json:"primary"`
		Secondary string `json:"secondary"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.Focus(req.Primary, req.Secondary); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Metric models.Metric `json:"metric"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.SetMetric(models.ParseMetric(string(req.Metric))); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	// absent fields keep their current values
	f := sess.View().Filter
	if err := decodeBody(r, &f); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.SetFilter(f)
	s.writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxSteps {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("n must be between 1 and %d", maxSteps))
			return
		}
		n = v
	}
	sess.Step(n)
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		sess.Pause()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		sess.Resume()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(chi.URLParam(r, "format"))
	renderer, err := render.GetRenderer(format)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	options, err := viewOptions(r, format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if format == "html" {
		options.PollURL = "/api/sessions/" + sess.ID + "/view.json"
	}

	output, err := renderer.Render(render.FrameOf(sess.Layout()), options)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(output)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func viewOptions(r *http.Request, format string) (*render.OutputOptions, error) {
	q := r.URL.Query()
	options := render.NewDefaultOptions(format)

	for name, dst := range map[string]*float64{"width": &options.Width, "height": &options.Height} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 8192 {
			return nil, fmt.Errorf("invalid %s: %q", name, raw)
		}
		*dst = v
	}
	if q.Get("palette") != "" {
		pal, err := ingest.GetPalette(q.Get("palette"))
		if err != nil {
			return nil, err
		}
		options.Palette = pal
	}
	if q.Get("labels") == "false" {
		options.ShowLabels = false
	}
	if q.Get("fit") == "false" {
		options.Fit = false
	}
	options.Title = q.Get("title")
	return options, nil
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "html":
		return "text/html; charset=utf-8"
	case "json":
		return "application/json"
	case "png":
		return "image/png"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrUnknownMetric),
		errors.Is(err, models.ErrNodeNotFound),
		errors.Is(err, models.ErrDuplicateNode),
		errors.Is(err, models.ErrDanglingEdge),
		errors.Is(err, models.ErrMissingRoot),
		errors.Is(err, models.ErrUnknownKind),
		errors.Is(err, session.ErrNoDataset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 10<<20))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>PivotGraph</title>
  <style>
    body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; color: #333; }
    .container { max-width: 900px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; }
    .btn { background: #4285f4; color: white; border: none; padding: 10px 20px; border-radius: 4px; cursor: pointer; font-size: 16px; }
  </style>
</head>
<body>
  <div class="container">
    <h1>PivotGraph</h1>
    <p>Start a session on the loaded dataset and watch it settle around its root.</p>
    <button class="btn" onclick="start()">New session</button>
  </div>
  <script>
    async function start() {
      const res = await fetch('/api/sessions', { method: 'POST' });
      if (!res.ok) { alert(await res.text()); return; }
      const snap = await res.json();
      window.location = '/api/sessions/' + snap.id + '/view.html';
    }
  </script>
</body>
</html>
`
