package handler

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/internal/config"
	"github.com/ChoSeoyoung/tour-project/internal/web"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

var (
	handler http.Handler
	initErr error
	once    sync.Once
)

// initApp wires the app once per function instance. Only /tmp is writable on
// Vercel, so local drivers default there; use DB_DRIVER=postgres for data
// that must survive cold starts.
func initApp() {
	if os.Getenv("DATA_DIR") == "" {
		_ = os.Setenv("DATA_DIR", "/tmp")
	}

	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = true
	log := logger.NewLogger(logCfg)
	logger.SetDefault(log)

	ctx := logger.ContextWithLogger(context.Background(), log)
	store, err := blog.OpenStore(ctx, blog.StoreConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		log.Error("Failed to open store", "driver", cfg.Database.Driver, "error", err)
		initErr = err
		return
	}

	gin.SetMode(gin.ReleaseMode)
	handler = web.NewServer(cfg, blog.NewService(store), log).Handler()
}

// Handler is the entry point for Vercel.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initApp)
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	handler.ServeHTTP(w, r)
}
