package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/internal/config"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

type Server struct {
	Config  *config.Config
	Service *blog.Service

	log     logger.Logger
	metrics *httpMetrics
	engine  *gin.Engine

	mu            sync.RWMutex
	templateCache map[string]*template.Template
}

func NewServer(cfg *config.Config, svc *blog.Service, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetDefault()
	}
	s := &Server{
		Config:        cfg,
		Service:       svc,
		log:           log,
		metrics:       newHTTPMetrics(),
		templateCache: make(map[string]*template.Template),
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the gin engine, e.g. for httptest or a serverless adapter.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Server.Addr,
		Handler:           s.engine,
		ReadTimeout:       s.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.Config.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", "addr", srv.Addr, "base_url", s.Config.Site.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server", "timeout", s.Config.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Server stopped")
	return nil
}
