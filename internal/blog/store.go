package blog

import (
	"context"
	"fmt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
)

// StoreConfig selects and addresses a Store backend.
type StoreConfig struct {
	Driver   string
	DSN      string
	MaxConns int
}

// OpenStore builds the Store named by cfg.Driver. For sqlite and file the DSN
// is a filesystem path; for postgres it is a connection string.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(ctx, cfg.DSN, cfg.MaxConns)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.DSN, cfg.MaxConns)
	case DriverFile:
		return NewFileStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
