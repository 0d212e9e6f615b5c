package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Site     SiteConfig     `koanf:"site"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"             validate:"required" env:"PUBLIC_ADDR"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"min=0"    env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"min=0"    env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"    env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver"    validate:"oneof=sqlite postgres file" env:"DB_DRIVER"`
	DSN      string `koanf:"dsn"                                             env:"DB_DSN"`
	DataDir  string `koanf:"data_dir"  validate:"required"                   env:"DATA_DIR"`
	MaxConns int    `koanf:"max_conns" validate:"min=0"                      env:"DB_MAX_CONNS"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled" env:"LOG_LEVEL"`
	JSON  bool   `koanf:"json"                                                  env:"LOG_JSON"`
}

type SiteConfig struct {
	Title   string `koanf:"title"    validate:"required" env:"SITE_TITLE"`
	BaseURL string `koanf:"base_url"                     env:"SITE_BASE_URL"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8084",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DataDir:  "data",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Site: SiteConfig{
			Title: "Tour Posts",
		},
	}
}

// Load layers struct defaults, the given .env files (missing files are skipped)
// and the process environment, then validates the result.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	envToPath := envMappings()
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envToPath[key]
			if !ok {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for the postgres driver")
	}
	return nil
}

// Refresh re-derives defaulted fields and validates again. Callers that
// change the config after Load (e.g. from CLI flags) clear a derived field to
// have it recomputed.
func (c *Config) Refresh() error {
	c.applyDerived()
	return c.Validate()
}

func (c *Config) applyDerived() {
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = baseURLFromAddr(c.Server.Addr)
	}
	if c.Database.DSN == "" {
		switch c.Database.Driver {
		case "sqlite":
			c.Database.DSN = filepath.Join(c.Database.DataDir, "posts.db")
		case "file":
			c.Database.DSN = filepath.Join(c.Database.DataDir, "posts.json")
		}
	}
}

// envMappings walks the env struct tags and returns ENV_NAME -> koanf path.
func envMappings() map[string]string {
	mappings := make(map[string]string)
	collectEnv(reflect.TypeOf(Config{}), "", mappings)
	return mappings
}

func collectEnv(t reflect.Type, prefix string, out map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() != "time" {
			collectEnv(field.Type, path, out)
			continue
		}
		if envName := field.Tag.Get("env"); envName != "" {
			out[envName] = path
		}
	}
}

func baseURLFromAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}

	host := ""
	port := ""
	if strings.HasPrefix(addr, ":") {
		host = "localhost"
		port = strings.TrimPrefix(addr, ":")
	} else {
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			port = p
		} else {
			host = addr
		}
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if port != "" {
		return "http://" + host + ":" + port
	}
	return "http://" + host
}
