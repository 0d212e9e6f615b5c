package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	NextID int64  `json:"next_id"`
	Posts  []Post `json:"posts"`
}

// FileStore keeps posts in a single JSON file. Suitable for local runs and
// demos; every write rewrites the whole file.
type FileStore struct {
	path  string
	mu    sync.Mutex
	state fileState
}

func NewFileStore(ctx context.Context, path string) (*FileStore, error) {
	store := &FileStore{path: path}
	if err := store.load(); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Store initialized", "store_driver", DriverFile, "path", path)
	return store, nil
}

func (s *FileStore) Save(_ context.Context, post *Post) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	id, err := s.save(post)
	if err != nil {
		return 0, err
	}
	if err := s.persist(); err != nil {
		s.state = backup
		if post.ID == id && backup.NextID < id {
			post.ID = 0
		}
		return 0, err
	}
	return id, nil
}

func (s *FileStore) FindByID(_ context.Context, id int64) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByID(id)
}

func (s *FileStore) FindAllDesc(_ context.Context) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAllDesc(), nil
}

func (s *FileStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	s.state.Posts = []Post{}
	if err := s.persist(); err != nil {
		s.state = backup
		return err
	}
	return nil
}

// WithTransaction holds the store lock for the whole callback. Changes are
// written once on success and discarded on error or panic.
func (s *FileStore) WithTransaction(ctx context.Context, fn func(Store) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.state = backup
			panic(p)
		}
		if err != nil {
			s.state = backup
			return
		}
		if pErr := s.persist(); pErr != nil {
			s.state = backup
			logger.FromContext(ctx).Error("Failed to persist file store", "path", s.path, "error", pErr)
			err = fmt.Errorf("commit transaction: %w", pErr)
		}
	}()
	return fn(&fileTx{store: s})
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) save(post *Post) (int64, error) {
	if err := post.Validate(); err != nil {
		return 0, err
	}
	if post.ID == 0 {
		s.state.NextID++
		post.ID = s.state.NextID
		s.state.Posts = append(s.state.Posts, *post)
		return post.ID, nil
	}
	for i := range s.state.Posts {
		if s.state.Posts[i].ID == post.ID {
			s.state.Posts[i] = *post
			return post.ID, nil
		}
	}
	return 0, fmt.Errorf("post %d: %w", post.ID, ErrNotFound)
}

func (s *FileStore) findByID(id int64) (*Post, error) {
	for _, post := range s.state.Posts {
		if post.ID == id {
			found := post
			return &found, nil
		}
	}
	return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
}

func (s *FileStore) findAllDesc() []Post {
	// 返回副本，避免外部修改内部切片
	posts := make([]Post, len(s.state.Posts))
	copy(posts, s.state.Posts)
	slices.SortFunc(posts, func(a, b Post) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return posts
}

func (s *FileStore) snapshot() fileState {
	return fileState{
		NextID: s.state.NextID,
		Posts:  slices.Clone(s.state.Posts),
	}
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fileState{Posts: []Post{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decoding %s: %w", s.path, err)
	}
	if state.Posts == nil {
		state.Posts = []Post{}
	}
	for _, p := range state.Posts {
		if p.ID > state.NextID {
			state.NextID = p.ID
		}
	}
	s.state = state
	return nil
}

func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return atomicWriteFile(s.path, data, 0o644)
}

// fileTx is the Store handed to WithTransaction callbacks. The parent lock
// is already held, so it works on the in-memory state directly.
type fileTx struct {
	store *FileStore
}

func (t *fileTx) Save(_ context.Context, post *Post) (int64, error) {
	return t.store.save(post)
}

func (t *fileTx) FindByID(_ context.Context, id int64) (*Post, error) {
	return t.store.findByID(id)
}

func (t *fileTx) FindAllDesc(_ context.Context) ([]Post, error) {
	return t.store.findAllDesc(), nil
}

func (t *fileTx) DeleteAll(_ context.Context) error {
	t.store.state.Posts = []Post{}
	return nil
}

func (t *fileTx) WithTransaction(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *fileTx) Close() error {
	return nil
}
