// Package server exposes scan sessions and the word lists over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/wordlist"
)

// Options configures a Server.
type Options struct {
	Lists          *wordlist.Lists
	NewSession     func() *app.Session
	Logger         zerolog.Logger
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

type sessionEntry struct {
	session  *app.Session
	lastUsed time.Time
}

// Server owns the gin engine and the session registry. Sessions are created
// by image upload and expire after SessionTTL without use.
type Server struct {
	lists      *wordlist.Lists
	newSession func() *app.Session
	logger     zerolog.Logger
	maxUpload  int64
	ttl        time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time

	engine *gin.Engine
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		lists:      opts.Lists,
		newSession: opts.NewSession,
		logger:     opts.Logger.With().Str("component", "http").Logger(),
		maxUpload:  opts.MaxUploadBytes,
		ttl:        opts.SessionTTL,
		sessions:   make(map[string]*sessionEntry),
		now:        time.Now,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 20 << 20
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes(r)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	if s.ttl > 0 {
		go s.sweepLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		evt := s.logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = s.logger.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) addSession(sess *app.Session) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{session: sess, lastUsed: s.now()}
	s.mu.Unlock()
	return id
}

func (s *Server) session(id string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = s.now()
	return e.session, true
}

func (s *Server) removeSession(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		e.session.Close()
	}
	return ok
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Server) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	var expired []*app.Session

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, e.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	if len(expired) > 0 {
		s.logger.Debug().Int("count", len(expired)).Msg("expired sessions")
	}
	return len(expired)
}

func (s *Server) sweepLoop(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
