package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

var postColumns = []string{"id", "title", "cost", "content"}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 100),
	cost INTEGER NOT NULL DEFAULT 0,
	content TEXT NOT NULL CHECK (length(content) BETWEEN 1 AND 100)
);
`

// sqlConn is satisfied by both *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type SQLiteStore struct {
	db   *sql.DB
	conn sqlConn
	tx   *sql.Tx
}

// NewSQLiteStore opens (creating if needed) the database file at path and
// ensures the posts table exists.
func NewSQLiteStore(ctx context.Context, path string, maxConns int) (*SQLiteStore, error) {
	// 确保数据库文件所在的目录存在
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL, foreign keys and busy timeout are per connection in SQLite, so they
	// travel in the DSN and apply to every pooled connection.
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create posts table: %w", err)
	}

	logger.FromContext(ctx).Info("Store initialized", "store_driver", DriverSQLite, "path", path)
	return &SQLiteStore{db: db, conn: db}, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *SQLiteStore) Save(ctx context.Context, post *Post) (int64, error) {
	if err := post.Validate(); err != nil {
		return 0, err
	}
	if post.ID == 0 {
		query, args, err := squirrel.Insert("posts").
			Columns("title", "cost", "content").
			Values(post.Title, post.Cost, post.Content).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("building insert query: %w", err)
		}
		res, err := s.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting post: %w", sqliteConstraint(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading inserted id: %w", err)
		}
		post.ID = id
		return id, nil
	}

	query, args, err := squirrel.Update("posts").
		Set("title", post.Title).
		Set("cost", post.Cost).
		Set("content", post.Content).
		Where(squirrel.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building update query: %w", err)
	}
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating post: %w", sqliteConstraint(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("post %d: %w", post.ID, ErrNotFound)
	}
	return post.ID, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*Post, error) {
	query, args, err := squirrel.Select(postColumns...).
		From("posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var post Post
	if err := sqlscan.Get(ctx, s.conn, &post, query, args...); err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning post: %w", err)
	}
	return &post, nil
}

func (s *SQLiteStore) FindAllDesc(ctx context.Context) ([]Post, error) {
	query, args, err := squirrel.Select(postColumns...).
		From("posts").
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var posts []Post
	if err := sqlscan.Select(ctx, s.conn, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("scanning posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	query, args, err := squirrel.Delete("posts").ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting posts: %w", err)
	}
	return nil
}

func (s *SQLiteStore) WithTransaction(ctx context.Context, fn func(Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	log := logger.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", "error", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()
	return fn(&SQLiteStore{db: s.db, conn: tx, tx: tx})
}

// Close releases the database handle. Calling it on a transaction scoped
// store is a no-op.
func (s *SQLiteStore) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

// sqliteConstraint tags CHECK/NOT NULL failures as validation errors.
func sqliteConstraint(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}
