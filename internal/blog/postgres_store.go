package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

const (
	defaultPGMaxConns  = 20
	defaultPingTimeout = 3 * time.Second
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	title VARCHAR(100) NOT NULL CHECK (title <> ''),
	cost INTEGER NOT NULL DEFAULT 0,
	content VARCHAR(100) NOT NULL CHECK (content <> '')
);
`

// DB is the slice of pgx shared by *pgxpool.Pool, pgx.Tx and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresStore struct {
	db   DB
	pool *pgxpool.Pool
	inTx bool
}

// NewPostgresStore connects a pgx pool, pings it and ensures the posts table.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = defaultPGMaxConns
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 256

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create posts table: %w", err)
	}

	logger.FromContext(ctx).Info("Store initialized",
		"store_driver", DriverPostgres,
		"host", cfg.ConnConfig.Host,
		"db_name", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
	)
	return &PostgresStore{db: pool, pool: pool}, nil
}

// NewPostgresStoreWithDB wraps an existing connection; the caller owns its lifecycle
// and the posts table must already exist.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, post *Post) (int64, error) {
	if err := post.Validate(); err != nil {
		return 0, err
	}
	if post.ID == 0 {
		query, args, err := squirrel.Insert("posts").
			Columns("title", "cost", "content").
			Values(post.Title, post.Cost, post.Content).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("building insert query: %w", err)
		}
		var id int64
		if err := s.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("inserting post: %w", pgConstraint(err))
		}
		post.ID = id
		return id, nil
	}

	query, args, err := squirrel.Update("posts").
		Set("title", post.Title).
		Set("cost", post.Cost).
		Set("content", post.Content).
		Where(squirrel.Eq{"id": post.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building update query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating post: %w", pgConstraint(err))
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("post %d: %w", post.ID, ErrNotFound)
	}
	return post.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Post, error) {
	query, args, err := squirrel.Select(postColumns...).
		From("posts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var post Post
	if err := pgxscan.Get(ctx, s.db, &post, query, args...); err != nil {
		if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning post: %w", err)
	}
	return &post, nil
}

func (s *PostgresStore) FindAllDesc(ctx context.Context) ([]Post, error) {
	query, args, err := squirrel.Select(postColumns...).
		From("posts").
		OrderBy("id DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var posts []Post
	if err := pgxscan.Select(ctx, s.db, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("scanning posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	query, args, err := squirrel.Delete("posts").PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting posts: %w", err)
	}
	return nil
}

func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	log := logger.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()
	return fn(&PostgresStore{db: tx, inTx: true})
}

// Close shuts down the pool when this store created it.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// pgConstraint tags data exceptions (e.g. value too long) and integrity
// violations as validation errors.
func pgConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgerrcode.IsDataException(pgErr.Code) || pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
