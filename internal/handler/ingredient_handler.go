package handler

import (
	"errors"
	"net/http"

	"foodgram/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListIngredients godoc
// @Summary      List ingredients
// @Description  Case-insensitive prefix search on the name. Not paginated.
// @Tags         ingredients
// @Produce      json
// @Param        name  query     string  false  "Name prefix"
// @Success      200   {array}   IngredientResponse
// @Router       /ingredients [get]
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.repo.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondInternal(c, err, "Failed to retrieve ingredients")
		return
	}

	response := make([]IngredientResponse, len(ingredients))
	for i, ingredient := range ingredients {
		response[i] = newIngredientResponse(ingredient)
	}
	c.JSON(http.StatusOK, response)
}

// GetIngredient godoc
// @Summary      Get ingredient by ID
// @Tags         ingredients
// @Produce      json
// @Param        id   path      int  true  "Ingredient ID"
// @Success      200  {object}  IngredientResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /ingredients/{id} [get]
func (h *Handler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id", "Ingredient")
	if !ok {
		return
	}

	ingredient, err := h.repo.GetIngredient(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to retrieve ingredient")
		return
	}
	c.JSON(http.StatusOK, newIngredientResponse(*ingredient))
}
