// Package web serves the browser surface: a server-rendered page over one
// workspace per browser session. Every action is a form POST answered with
// a 303 redirect back to the page.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hayeah/repocat/internal/workspace"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "repocat_session"

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 256
)

// Options bounds the session store. Zero values take the defaults.
type Options struct {
	// SessionTTL is how long an idle session survives.
	SessionTTL time.Duration
	// MaxSessions caps live sessions; the least recently used is evicted.
	MaxSessions int
}

type Server struct {
	factory workspace.Factory
	log     *slog.Logger
	tmpl    *template.Template

	mu       sync.Mutex
	sessions *expirable.LRU[string, *workspace.Workspace]
}

func New(factory workspace.Factory, log *slog.Logger, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	evicted := func(id string, _ *workspace.Workspace) {
		log.Debug("session evicted", "session", id)
	}
	return &Server{
		factory:  factory,
		log:      log,
		tmpl:     tmpl,
		sessions: expirable.NewLRU[string, *workspace.Workspace](opts.MaxSessions, evicted, opts.SessionTTL),
	}, nil
}

// Sessions is the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.Len()
}

// Handler builds the gin engine with every route mounted.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.SetHTMLTemplate(s.tmpl)

	r.GET("/", s.Index)
	r.GET("/output.txt", s.Download)
	r.POST("/repo", s.Load)
	r.POST("/toggle", s.Toggle)
	r.POST("/extension", s.Extension)
	r.POST("/expand", s.Expand)
	r.POST("/process", s.Process)
	r.POST("/copy", s.Copy)
	return r
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"took", time.Since(start))
}

// workspace returns the caller's workspace, starting a session if needed.
// Every hit pushes the session's expiry forward.
func (s *Server) workspace(c *gin.Context) *workspace.Workspace {
	id, err := c.Cookie(sessionCookie)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		if ws, ok := s.sessions.Get(id); ok {
			s.sessions.Add(id, ws)
			return ws
		}
	}
	if _, perr := uuid.Parse(id); err != nil || perr != nil {
		id = uuid.NewString()
	}
	ws := s.factory()
	s.sessions.Add(id, ws)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return ws
}
