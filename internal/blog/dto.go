package blog

type SaveRequest struct {
	Title   string `json:"title"`
	Cost    int    `json:"cost"`
	Content string `json:"content"`
}

func (r SaveRequest) ToEntity() *Post {
	return NewPost(r.Title, r.Cost, r.Content)
}

type UpdateRequest struct {
	Title   string `json:"title"`
	Cost    int    `json:"cost"`
	Content string `json:"content"`
}

type PostResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Cost    int    `json:"cost"`
	Content string `json:"content"`
}

func NewPostResponse(p *Post) PostResponse {
	return PostResponse{
		ID:      p.ID,
		Title:   p.Title,
		Cost:    p.Cost,
		Content: p.Content,
	}
}

// PostListItem is the row shape rendered on the posts page.
type PostListItem struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Cost    int    `json:"cost"`
	Content string `json:"content"`
}

func NewPostListItem(p Post) PostListItem {
	return PostListItem{
		ID:      p.ID,
		Title:   p.Title,
		Cost:    p.Cost,
		Content: p.Content,
	}
}
