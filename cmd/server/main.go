package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/internal/config"
	"github.com/ChoSeoyoung/tour-project/internal/web"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

type rootFlags struct {
	envFile  string
	logLevel string
	logJSON  bool
	addr     string
	driver   string
	dsn      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the posts API and pages",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before the environment")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	pf.BoolVar(&flags.logJSON, "log-json", false, "emit JSON logs")
	pf.StringVar(&flags.addr, "addr", "", "listen address, overrides PUBLIC_ADDR")
	pf.StringVar(&flags.driver, "driver", "", "store driver (sqlite, postgres, file)")
	pf.StringVar(&flags.dsn, "dsn", "", "store DSN or file path")

	cmd.AddCommand(newImportCmd(flags))
	return cmd
}

// loadRuntime resolves config (env file, environment, then flags) and builds
// the process logger.
func loadRuntime(cmd *cobra.Command, flags *rootFlags) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if fs.Changed("log-json") {
		cfg.Log.JSON = flags.logJSON
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = flags.addr
		if os.Getenv("SITE_BASE_URL") == "" {
			cfg.Site.BaseURL = ""
		}
	}
	if fs.Changed("driver") {
		cfg.Database.Driver = flags.driver
		if !fs.Changed("dsn") {
			cfg.Database.DSN = ""
		}
	}
	if fs.Changed("dsn") {
		cfg.Database.DSN = flags.dsn
	}
	if err := cfg.Refresh(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	log := logger.NewLogger(logCfg)
	logger.SetDefault(log)
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg *config.Config) (blog.Store, error) {
	return blog.OpenStore(ctx, blog.StoreConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
	})
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	cfg, log, err := loadRuntime(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, log)

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("Failed to open store", "driver", cfg.Database.Driver, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	server := web.NewServer(cfg, blog.NewService(store), log)
	return server.ListenAndServe(ctx)
}
