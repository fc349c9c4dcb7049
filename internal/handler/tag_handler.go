package handler

import (
	"errors"
	"net/http"

	"foodgram/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetTags godoc
// @Summary      Get all tags
// @Description  Retrieves a list of all available tags.
// @Tags         tags
// @Produce      json
// @Success      200  {array}   TagResponse
// @Router       /tags [get]
func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.repo.ListTags(c.Request.Context())
	if err != nil {
		respondInternal(c, err, "Failed to retrieve tags")
		return
	}

	response := make([]TagResponse, len(tags))
	for i, tag := range tags {
		response[i] = newTagResponse(tag)
	}
	c.JSON(http.StatusOK, response)
}

// GetTag godoc
// @Summary      Get tag by ID
// @Tags         tags
// @Produce      json
// @Param        id   path      int  true  "Tag ID"
// @Success      200  {object}  TagResponse
// @Failure      404  {object}  ErrorResponse "Tag not found"
// @Router       /tags/{id} [get]
func (h *Handler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id", "Tag")
	if !ok {
		return
	}

	tag, err := h.repo.GetTag(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to retrieve tag")
		return
	}
	c.JSON(http.StatusOK, newTagResponse(*tag))
}
