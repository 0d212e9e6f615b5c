package blog_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
)

func newTestService(t *testing.T) (*blog.Service, blog.Store) {
	t.Helper()
	store, err := blog.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "posts.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.DeleteAll(context.Background())
		_ = store.Close()
	})
	return blog.NewService(store), store
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (f failingStore) Save(context.Context, *blog.Post) (int64, error) { return 0, f.err }
func (f failingStore) FindByID(context.Context, int64) (*blog.Post, error) { return nil, f.err }
func (f failingStore) FindAllDesc(context.Context) ([]blog.Post, error) { return nil, f.err }
func (f failingStore) DeleteAll(context.Context) error { return f.err }
func (f failingStore) Close() error { return nil }
func (f failingStore) WithTransaction(_ context.Context, fn func(blog.Store) error) error {
	return fn(f)
}

func TestService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Should save a post and return its id", func(t *testing.T) {
		svc, _ := newTestService(t)
		id, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "title", Cost: 999, Content: "content"})
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		got, err := svc.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, blog.PostResponse{ID: id, Title: "title", Cost: 999, Content: "content"}, got)
	})

	t.Run("Should surface validation failures", func(t *testing.T) {
		svc, store := newTestService(t)
		_, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "", Cost: 1, Content: "content"})
		assert.ErrorIs(t, err, blog.ErrValidation)

		all, err := store.FindAllDesc(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Should propagate store errors", func(t *testing.T) {
		dbErr := errors.New("disk full")
		svc := blog.NewService(failingStore{err: dbErr})
		_, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "t", Content: "c"})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestService_UpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace all fields and keep the id", func(t *testing.T) {
		svc, _ := newTestService(t)
		id, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "title", Cost: 999, Content: "content"})
		require.NoError(t, err)

		updated, err := svc.UpdatePost(ctx, id, blog.UpdateRequest{Title: "title2", Cost: 1000, Content: "content2"})
		require.NoError(t, err)
		assert.Equal(t, id, updated)

		got, err := svc.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, blog.PostResponse{ID: id, Title: "title2", Cost: 1000, Content: "content2"}, got)
	})

	t.Run("Should fail with NotFoundError and create nothing", func(t *testing.T) {
		svc, store := newTestService(t)
		_, err := svc.UpdatePost(ctx, 404, blog.UpdateRequest{Title: "t", Content: "c"})
		require.Error(t, err)

		var notFound *blog.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(404), notFound.ID)
		assert.ErrorIs(t, err, blog.ErrNotFound)
		assert.Equal(t, "no such post with id=404", err.Error())

		all, err := store.FindAllDesc(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Should keep the old values when the update is invalid", func(t *testing.T) {
		svc, _ := newTestService(t)
		id, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "title", Cost: 1, Content: "content"})
		require.NoError(t, err)

		_, err = svc.UpdatePost(ctx, id, blog.UpdateRequest{Title: "", Cost: 2, Content: "content"})
		assert.ErrorIs(t, err, blog.ErrValidation)

		got, err := svc.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "title", got.Title)
		assert.Equal(t, 1, got.Cost)
	})
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return NotFoundError for a missing post", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.FindByID(ctx, 1)
		var notFound *blog.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Should list posts newest first", func(t *testing.T) {
		svc, _ := newTestService(t)
		a, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "A", Cost: 1, Content: "first"})
		require.NoError(t, err)
		b, err := svc.CreatePost(ctx, blog.SaveRequest{Title: "B", Cost: 2, Content: "second"})
		require.NoError(t, err)

		items, err := svc.FindAllDesc(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, b, items[0].ID)
		assert.Equal(t, a, items[1].ID)
	})

	t.Run("Should return an empty list for an empty store", func(t *testing.T) {
		svc, _ := newTestService(t)
		items, err := svc.FindAllDesc(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}
