package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

// Service runs post use cases, one store transaction per call.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreatePost persists a new post built from req and returns its generated id.
func (s *Service) CreatePost(ctx context.Context, req SaveRequest) (int64, error) {
	post := req.ToEntity()
	var id int64
	err := s.store.WithTransaction(ctx, func(tx Store) error {
		saved, err := tx.Save(ctx, post)
		if err != nil {
			return err
		}
		id = saved
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	logger.FromContext(ctx).Debug("Post created", "post_id", id)
	return id, nil
}

// UpdatePost replaces title, cost and content of post id and returns id.
// A missing post yields *NotFoundError and nothing is written.
func (s *Service) UpdatePost(ctx context.Context, id int64, req UpdateRequest) (int64, error) {
	err := s.store.WithTransaction(ctx, func(tx Store) error {
		post, err := tx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{ID: id}
			}
			return err
		}
		post.Update(req.Title, req.Cost, req.Content)
		_, err = tx.Save(ctx, post)
		return err
	})
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return 0, notFound
		}
		return 0, fmt.Errorf("update post %d: %w", id, err)
	}
	logger.FromContext(ctx).Debug("Post updated", "post_id", id)
	return id, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (PostResponse, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PostResponse{}, &NotFoundError{ID: id}
		}
		return PostResponse{}, fmt.Errorf("find post %d: %w", id, err)
	}
	return NewPostResponse(post), nil
}

func (s *Service) FindAllDesc(ctx context.Context) ([]PostListItem, error) {
	posts, err := s.store.FindAllDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, NewPostListItem(p))
	}
	return items, nil
}
