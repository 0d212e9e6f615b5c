package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

const feedLimit = 20

func (s *Server) RSS(c *gin.Context) {
	siteURL := s.Config.Site.BaseURL

	feed := &feeds.Feed{
		Title:       s.Config.Site.Title,
		Link:        &feeds.Link{Href: siteURL + "/posts"},
		Description: s.Config.Site.Title + " - latest posts",
		Created:     time.Now(),
	}

	items, err := s.Service.FindAllDesc(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// 只保留最近的 20 篇
	if len(items) > feedLimit {
		items = items[:feedLimit]
	}

	for _, post := range items {
		id := strconv.FormatInt(post.ID, 10)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          siteURL + "/api/v1/posts/" + id,
			Title:       post.Title,
			Link:        &feeds.Link{Href: siteURL + "/api/v1/posts/" + id},
			Description: "cost: " + formatCost(post.Cost),
			Content:     renderMarkdown(post.Content),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("RSS error", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to generate RSS", err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rss))
}
