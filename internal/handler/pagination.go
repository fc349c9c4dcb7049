package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every paginated list.
type Page[T any] struct {
	Count    int64   `json:"count" example:"12"`
	Next     *string `json:"next" example:"http://localhost:8080/api/recipes?page=3"`
	Previous *string `json:"previous" example:"http://localhost:8080/api/recipes?page=1"`
	Results  []T     `json:"results"`
}

type pageRequest struct {
	Page  int
	Limit int
}

func (p pageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// pageParams reads page and limit, falling back to defaults on bad input.
func (h *Handler) pageParams(c *gin.Context) pageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = h.cfg.PageSize
	}
	if limit > h.cfg.PageSizeMax {
		limit = h.cfg.PageSizeMax
	}

	return pageRequest{Page: page, Limit: limit}
}

// newPage builds the envelope; next and previous keep every other query
// parameter of the current request.
func newPage[T any](c *gin.Context, baseURL string, results []T, total int64, p pageRequest) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}

	if int64(p.Offset()+len(results)) < total {
		next := pageURL(c, baseURL, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, baseURL, p.Page-1)
		page.Previous = &prev
	}
	return page
}

func pageURL(c *gin.Context, baseURL string, page int) string {
	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{Path: c.Request.URL.Path, RawQuery: query.Encode()}
	return strings.TrimRight(baseURL, "/") + u.String()
}
