package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/metrics"
	"github.com/spektr-org/launchboard/render"
)

// Options configures the HTTP API.
type Options struct {
	CORSOrigins []string
	PNG         render.PNG
	Logger      *zap.Logger
}

// Server exposes the layout and per-session signal graphs over HTTP.
type Server struct {
	layout   engine.Layout
	sessions *Sessions
	rec      *metrics.Recorder
	png      render.PNG
	logger   *zap.Logger
	router   chi.Router
}

// New builds the router. rec may be nil, in which case /metrics is not served.
func New(layout engine.Layout, sessions *Sessions, rec *metrics.Recorder, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	s := &Server{
		layout:   layout,
		sessions: sessions,
		rec:      rec,
		png:      opts.PNG,
		logger:   logger,
	}
	s.router = s.routes(opts.CORSOrigins)
	return s
}

func (s *Server) routes(origins []string) chi.Router {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	if s.rec != nil {
		r.Method(http.MethodGet, "/metrics", s.rec.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/signals/{signal}", s.handleSignal)
			r.Get("/outputs/{output}", s.handleOutput)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
