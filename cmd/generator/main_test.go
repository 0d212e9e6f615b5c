package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/internal/config"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

func TestGenerate(t *testing.T) {
	t.Run("Should write every page into the output directory", func(t *testing.T) {
		ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
		dir := t.TempDir()

		cfg := config.Default()
		cfg.Database.Driver = blog.DriverFile
		cfg.Database.DSN = filepath.Join(dir, "posts.json")
		cfg.Site.BaseURL = "https://posts.example.com"

		store, err := blog.NewFileStore(ctx, cfg.Database.DSN)
		require.NoError(t, err)
		_, err = store.Save(ctx, blog.NewPost("static title", 3, "static content"))
		require.NoError(t, err)

		out := filepath.Join(dir, "dist")
		require.NoError(t, generate(ctx, cfg, out))

		for _, rel := range pages {
			_, err := os.Stat(filepath.Join(out, rel))
			assert.NoError(t, err, rel)
		}
		list, err := os.ReadFile(filepath.Join(out, "posts", "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(list), "static title")

		feed, err := os.ReadFile(filepath.Join(out, "posts", "feed.xml"))
		require.NoError(t, err)
		assert.Contains(t, string(feed), "https://posts.example.com/api/v1/posts/1")
	})
}
