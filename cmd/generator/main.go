package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/internal/config"
	"github.com/ChoSeoyoung/tour-project/internal/web"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

// pages maps a route to its file under the output directory.
var pages = map[string]string{
	"/":            "index.html",
	"/posts":       "posts/index.html",
	"/posts/feed":  "posts/feed.xml",
	"/sitemap.xml": "sitemap.xml",
}

func main() {
	var (
		baseURL   string
		outputDir string
		envFile   string
	)
	cmd := &cobra.Command{
		Use:          "generator",
		Short:        "Render the posts pages and feed into a static directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.Site.BaseURL = strings.TrimRight(baseURL, "/")
			}
			log := logger.NewLogger(&logger.Config{
				Level:      logger.ParseLevel(cfg.Log.Level),
				Output:     os.Stderr,
				JSON:       cfg.Log.JSON,
				TimeFormat: "15:04:05",
			})
			ctx := logger.ContextWithLogger(cmd.Context(), log)
			return generate(ctx, cfg, outputDir)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the site base URL")
	cmd.Flags().StringVar(&outputDir, "out", "dist", "output directory")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before the environment")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generate(ctx context.Context, cfg *config.Config, outputDir string) error {
	log := logger.FromContext(ctx)

	store, err := blog.OpenStore(ctx, blog.StoreConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	handler := web.NewServer(cfg, blog.NewService(store), log).Handler()

	if err := os.RemoveAll(outputDir); err != nil {
		log.Warn("Failed to clean output dir", "dir", outputDir, "error", err)
	}

	for route, rel := range pages {
		req := httptest.NewRequest(http.MethodGet, route, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return fmt.Errorf("render %s: status %d", route, rec.Code)
		}

		outPath := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, rec.Body.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		log.Info("Generated page", "route", route, "file", outPath)
	}
	return nil
}
