package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"autoremote/internal/config"
	"autoremote/internal/dispatch"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type Server struct {
	cfg        *config.Config
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	router     *chi.Mux
	httpServer *http.Server
	startTime  time.Time
	version    string
}

func New(cfg *config.Config, dispatcher *dispatch.Dispatcher, logger *slog.Logger, version string) *Server {
	s := &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		startTime:  time.Now(),
		version:    version,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))
	r.Use(middleware.Timeout(s.cfg.HTTPTimeout + 5*time.Second))
	r.Use(middleware.StripSlashes)
	r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.cfg.APIKey))

		r.Post("/message", s.handleSendMessage)
		r.Post("/notification", s.handleSendNotification)
		r.Post("/intent", s.handleSendIntent)

		r.Post("/key", s.handleSetKey)
		r.Get("/key/qr", s.handleKeyQR)

		r.Get("/presets", s.handleListPresets)
		r.Post("/presets/{ref}/send", s.handleSendPreset)

		r.Post("/settings/reload", s.handleReload)
	})

	s.router = r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("AutoRemote bridge listening", "addr", "http://"+addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	return nil
}
