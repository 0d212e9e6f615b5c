package blog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const MaxTextLength = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

type Post struct {
	ID      int64  `json:"id"      db:"id"`
	Title   string `json:"title"   db:"title"   validate:"required,max=100"`
	Cost    int    `json:"cost"    db:"cost"`
	Content string `json:"content" db:"content" validate:"required,max=100"`
}

// NewPost builds an unsaved post; the store assigns its ID on first Save.
func NewPost(title string, cost int, content string) *Post {
	return &Post{
		Title:   title,
		Cost:    cost,
		Content: content,
	}
}

// Update replaces title, cost and content in place. The ID is left untouched
// and nothing is validated until the post is saved.
func (p *Post) Update(title string, cost int, content string) {
	p.Title = title
	p.Cost = cost
	p.Content = content
}

// Validate enforces the column constraints stores apply on every Save.
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
