package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// postView is a list row with its content pre-rendered for the page.
type postView struct {
	blog.PostListItem
	ContentHTML template.HTML
}

func (s *Server) CreatePost(c *gin.Context) {
	var req blog.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	id, err := s.Service.CreatePost(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func (s *Server) UpdatePost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	var req blog.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	updated, err := s.Service.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) GetPost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	post, err := s.Service.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) Index(c *gin.Context) {
	s.render(c, "index.html", s.baseData(c))
}

func (s *Server) PostsList(c *gin.Context) {
	items, err := s.Service.FindAllDesc(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	posts := make([]postView, 0, len(items))
	for _, item := range items {
		posts = append(posts, postView{
			PostListItem: item,
			ContentHTML:  template.HTML(renderMarkdown(item.Content)),
		})
	}
	data := s.baseData(c)
	data["Posts"] = posts
	s.render(c, "posts.html", data)
}

func (s *Server) PostsSave(c *gin.Context) {
	data := s.baseData(c)
	data["PageTitle"] = "게시글 등록"
	s.render(c, "save.html", data)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "route not found", nil)
}

func postIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id: "+raw, err)
		return 0, false
	}
	return id, true
}

func (s *Server) render(c *gin.Context, page string, data map[string]any) {
	t, err := s.templateFor(page)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Template parse error", "page", page, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to render page", err)
		return
	}
	var b strings.Builder
	if err := t.ExecuteTemplate(&b, "base", data); err != nil {
		logger.FromContext(c.Request.Context()).Error("Template execution error", "page", page, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to render page", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}

func (s *Server) templateFor(page string) (*template.Template, error) {
	s.mu.RLock()
	t, ok := s.templateCache[page]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := template.New("").Funcs(template.FuncMap{
		"formatCost": formatCost,
	}).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.templateCache[page] = t
	s.mu.Unlock()
	return t, nil
}

func (s *Server) baseData(c *gin.Context) map[string]any {
	return map[string]any{
		"Title":       s.Config.Site.Title,
		"SiteURL":     s.Config.Site.BaseURL,
		"CurrentPath": c.Request.URL.Path,
		"RequestID":   c.GetString(requestIDKey),
	}
}

// renderMarkdown converts post content to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func renderMarkdown(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	var b strings.Builder
	if err := markdown.Convert([]byte(input), &b); err != nil {
		return template.HTMLEscapeString(input)
	}
	return b.String()
}

// formatCost renders cost with thousands separators, e.g. 1000 -> "1,000".
func formatCost(cost int) string {
	digits := strconv.Itoa(cost)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
