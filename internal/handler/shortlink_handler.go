package handler

import (
	"net/http"
	"strconv"

	"foodgram/backend/internal/logging"
	"foodgram/backend/internal/metrics"
	"foodgram/backend/internal/shortlink"

	"github.com/gin-gonic/gin"
)

// RedirectShortLink godoc
// @Summary      Follow a short link
// @Description  Redirects to the recipe page, or to the not-found page for unknown tokens.
// @Tags         recipes
// @Param        token  path  string  true  "Short link token"
// @Success      302
// @Router       /s/{token} [get]
func (h *Handler) RedirectShortLink(c *gin.Context) {
	id, err := shortlink.Decode(c.Param("token"))
	if err == nil {
		exists, lookupErr := h.repo.RecipeExists(c.Request.Context(), id)
		if lookupErr != nil {
			logging.FromContext(c).Error().Err(lookupErr).Msg("short link lookup failed")
		}
		if exists {
			metrics.ShortLinkRedirects.WithLabelValues("found").Inc()
			c.Redirect(http.StatusFound, "/recipes/"+strconv.FormatUint(uint64(id), 10))
			return
		}
	}

	metrics.ShortLinkRedirects.WithLabelValues("not_found").Inc()
	c.Redirect(http.StatusFound, h.cfg.NotFoundPath)
}
