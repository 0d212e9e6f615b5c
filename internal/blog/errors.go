package blog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrValidation = errors.New("invalid post")
)

// NotFoundError reports the id an update was aimed at.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such post with id=%d", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
