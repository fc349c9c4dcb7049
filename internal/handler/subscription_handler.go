package handler

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/backend/internal/models"
	"foodgram/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Subscribe godoc
// @Summary      Subscribe to an author
// @Tags         subscriptions
// @Produce      json
// @Security     TokenAuth
// @Param        id             path   int  true   "Author ID"
// @Param        recipes_limit  query  int  false  "Recipes to include"
// @Success      201  {object}  UserWithRecipesResponse
// @Failure      400  {object}  ErrorResponse "Self or repeated subscription"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Author not found"
// @Router       /users/{id}/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id", "User")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := viewerID(c)

	author, err := h.repo.GetUser(ctx, authorID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to load user")
		return
	}

	switch err := h.repo.Subscribe(ctx, userID, authorID); {
	case errors.Is(err, repository.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot subscribe to yourself"})
		return
	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already subscribed to this user"})
		return
	case err != nil:
		respondInternal(c, err, "Failed to subscribe")
		return
	}

	responses, err := h.authorResponses(ctx, userID, []models.User{*author}, recipesLimit(c))
	if err != nil {
		respondInternal(c, err, "Failed to build response")
		return
	}
	c.JSON(http.StatusCreated, responses[0])
}

// Unsubscribe godoc
// @Summary      Unsubscribe from an author
// @Tags         subscriptions
// @Security     TokenAuth
// @Param        id   path  int  true  "Author ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Not subscribed"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Author not found"
// @Router       /users/{id}/subscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id", "User")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.repo.GetUser(ctx, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		respondInternal(c, err, "Failed to load user")
		return
	}

	err := h.repo.Unsubscribe(ctx, viewerID(c), authorID)
	if errors.Is(err, repository.ErrNotExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not subscribed to this user"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to unsubscribe")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubscriptions godoc
// @Summary      Authors the caller follows
// @Tags         subscriptions
// @Produce      json
// @Security     TokenAuth
// @Param        page           query  int  false  "Page number" default(1)
// @Param        limit          query  int  false  "Items per page" default(6)
// @Param        recipes_limit  query  int  false  "Recipes per author"
// @Success      200  {object}  Page[UserWithRecipesResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /users/subscriptions [get]
func (h *Handler) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := viewerID(c)
	p := h.pageParams(c)

	authors, total, err := h.repo.ListSubscriptions(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		respondInternal(c, err, "Failed to fetch subscriptions")
		return
	}

	results, err := h.authorResponses(ctx, userID, authors, recipesLimit(c))
	if err != nil {
		respondInternal(c, err, "Failed to fetch subscriptions")
		return
	}

	c.JSON(http.StatusOK, newPage(c, h.cfg.PublicURL, results, total, p))
}

// recipesLimit returns 0, meaning no limit, when the parameter is absent or
// not a positive integer.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
