package web

import (
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
)

type URL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []URL    `xml:"url"`
}

// Sitemap lists the HTML pages and the feed.
func (s *Server) Sitemap(c *gin.Context) {
	baseURL := s.Config.Site.BaseURL
	urls := []URL{
		{Loc: baseURL + "/", ChangeFreq: "daily", Priority: "1.0"},
		{Loc: baseURL + "/posts", ChangeFreq: "hourly", Priority: "0.8"},
		{Loc: baseURL + "/posts/save", Priority: "0.3"},
		{Loc: baseURL + "/posts/feed", ChangeFreq: "hourly", Priority: "0.5"},
	}

	out, err := xml.MarshalIndent(URLSet{URLs: urls}, "", "  ")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate sitemap", err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
