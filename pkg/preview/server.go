package preview

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vrt"
)

// Defaults for connection housekeeping.
const (
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second
	DefaultTaskTimeout  = 5 * time.Second
)

// ServerMessage is pushed to browsers.
type ServerMessage struct {
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// ClientMessage asks the server to dispatch a host event. Path holds
// element child indices from the root container to the target.
type ClientMessage struct {
	Path  []int  `json:"path"`
	Event string `json:"event"`
	Value string `json:"value,omitempty"`
}

// Server serves a live view of an App's root container. Every scheduler
// flush pushes fresh HTML to all connected browsers, and browser events are
// relayed back into the in-memory document.
//
// The App's loop must be running (App.Start) while the server handles
// requests.
type Server struct {
	app      *vrt.App
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	page     *template.Template

	title        string
	metricsPath  string
	writeTimeout time.Duration
	pingInterval time.Duration
	taskTimeout  time.Duration

	mu          sync.Mutex
	clients     map[*client]struct{}
	unsubscribe func()
	closed      bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithMetricsPath mounts the App's Prometheus handler at path. It has no
// effect when the App has no metrics.
func WithMetricsPath(path string) Option {
	return func(s *Server) {
		s.metricsPath = path
	}
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithPingInterval sets how often idle connections are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// New creates a preview server for app.
func New(app *vrt.App, opts ...Option) *Server {
	s := &Server{
		app:          app,
		logger:       slog.Default().With("component", "preview"),
		title:        "vrt preview",
		metricsPath:  "/metrics",
		writeTimeout: DefaultWriteTimeout,
		pingInterval: DefaultPingInterval,
		taskTimeout:  DefaultTaskTimeout,
		clients:      make(map[*client]struct{}),
		page:         template.Must(template.New("page").Parse(pageTemplate)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/", s.handlePage)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleWebSocket)
	if m := app.Metrics(); m != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, m.Handler())
	}
	s.router = r

	s.unsubscribe = app.Subscribe(s.broadcast)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Close disconnects every browser and stops listening for flushes.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	s.unsubscribe()
	for _, c := range clients {
		c.close()
	}
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// currentHTML reads the root container on the loop.
func (s *Server) currentHTML(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	var html string
	err := s.app.Do(ctx, func() { html = s.app.HTML() })
	return html, err
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	html, err := s.currentHTML(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{s.title, template.HTML(html)})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	html, err := s.currentHTML(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// broadcast runs on the loop after every flush.
func (s *Server) broadcast() {
	s.mu.Lock()
	if len(s.clients) == 0 {
		s.mu.Unlock()
		return
	}
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	msg := ServerMessage{HTML: s.app.HTML()}
	for _, c := range clients {
		c.push(msg)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
