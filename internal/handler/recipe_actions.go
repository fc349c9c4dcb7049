package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"foodgram/backend/internal/metrics"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/shoppinglist"

	"github.com/gin-gonic/gin"
)

type recipeRelation func(ctx context.Context, userID, recipeID uint) error

// AddFavorite godoc
// @Summary      Add a recipe to favorites
// @Tags         favorites
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      int  true  "Recipe ID"
// @Success      201  {object}  ShortRecipeResponse
// @Failure      400  {object}  ErrorResponse "Already in favorites"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id}/favorite [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.repo.AddFavorite, "Recipe is already in favorites")
}

// RemoveFavorite godoc
// @Summary      Remove a recipe from favorites
// @Tags         favorites
// @Security     TokenAuth
// @Param        id   path  int  true  "Recipe ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Not in favorites"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id}/favorite [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.repo.RemoveFavorite, "Recipe is not in favorites")
}

// AddToShoppingCart godoc
// @Summary      Add a recipe to the shopping cart
// @Tags         shopping-cart
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      int  true  "Recipe ID"
// @Success      201  {object}  ShortRecipeResponse
// @Failure      400  {object}  ErrorResponse "Already in the shopping cart"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id}/shopping_cart [post]
func (h *Handler) AddToShoppingCart(c *gin.Context) {
	h.addRelation(c, h.repo.AddToShoppingCart, "Recipe is already in the shopping cart")
}

// RemoveFromShoppingCart godoc
// @Summary      Remove a recipe from the shopping cart
// @Tags         shopping-cart
// @Security     TokenAuth
// @Param        id   path  int  true  "Recipe ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Not in the shopping cart"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id}/shopping_cart [delete]
func (h *Handler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeRelation(c, h.repo.RemoveFromShoppingCart, "Recipe is not in the shopping cart")
}

// DownloadShoppingCart godoc
// @Summary      Download the shopping list
// @Description  Sums ingredient amounts over every recipe in the cart.
// @Tags         shopping-cart
// @Produce      plain
// @Security     TokenAuth
// @Success      200  {string}  string  "Shopping list"
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes/download_shopping_cart [get]
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.repo.ShoppingList(c.Request.Context(), viewerID(c))
	if err != nil {
		respondInternal(c, err, "Failed to build shopping list")
		return
	}
	metrics.ShoppingListDownloads.Inc()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shoppinglist.FileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(shoppinglist.Render(items)))
}

func (h *Handler) addRelation(c *gin.Context, add recipeRelation, duplicateMsg string) {
	id, ok := pathID(c, "id", "Recipe")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	recipe, err := h.repo.GetRecipeSummary(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to load recipe")
		return
	}

	err = add(ctx, viewerID(c), id)
	if errors.Is(err, repository.ErrAlreadyExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicateMsg})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to update recipe list")
		return
	}

	c.JSON(http.StatusCreated, newShortRecipeResponse(*recipe))
}

func (h *Handler) removeRelation(c *gin.Context, remove recipeRelation, missingMsg string) {
	id, ok := pathID(c, "id", "Recipe")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	exists, err := h.repo.RecipeExists(ctx, id)
	if err != nil {
		respondInternal(c, err, "Failed to load recipe")
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	err = remove(ctx, viewerID(c), id)
	if errors.Is(err, repository.ErrNotExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingMsg})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to update recipe list")
		return
	}

	c.Status(http.StatusNoContent)
}
