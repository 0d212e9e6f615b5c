package blog

import "context"

// Store persists posts. Every state change goes through an explicit Save;
// nothing is flushed implicitly.
type Store interface {
	// Save inserts the post when its ID is zero and assigns the new ID onto it,
	// otherwise it overwrites the stored row. Returns the post ID.
	Save(ctx context.Context, post *Post) (int64, error)
	// FindByID returns ErrNotFound when no post has the given id.
	FindByID(ctx context.Context, id int64) (*Post, error)
	// FindAllDesc returns every post, newest (highest id) first.
	FindAllDesc(ctx context.Context) ([]Post, error)
	// DeleteAll clears the store. Used by test teardown.
	DeleteAll(ctx context.Context) error
	// WithTransaction runs fn against a transaction scoped store, committing
	// when fn returns nil and rolling back otherwise.
	WithTransaction(ctx context.Context, fn func(Store) error) error
	Close() error
}
