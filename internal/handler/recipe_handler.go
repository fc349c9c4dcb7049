package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"foodgram/backend/internal/metrics"
	"foodgram/backend/internal/models"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/shortlink"
	"foodgram/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type RecipeIngredientInput struct {
	ID     uint `json:"id" binding:"required" example:"1"`
	Amount int  `json:"amount" example:"100"`
}

// RecipeInput is the body of both create and update. Image is optional on
// update, where omitting it keeps the current picture.
type RecipeInput struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required,min=1,unique=ID,dive"`
	Tags        []uint                  `json:"tags" binding:"required,min=1,unique" example:"1,2"`
	Image       string                  `json:"image" example:"data:image/png;base64,iVBORw0KGgo..."`
	Name        string                  `json:"name" binding:"required,max=256" example:"Pancakes"`
	Text        string                  `json:"text" binding:"required" example:"Mix and fry."`
	CookingTime int                     `json:"cooking_time" example:"20"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link" example:"http://localhost:8080/s/1b"`
}

// endregion

// region --- Recipe Handlers ---

// ListRecipes godoc
// @Summary      List recipes
// @Description  Newest first. is_favorited and is_in_shopping_cart only apply to authenticated callers.
// @Tags         recipes
// @Produce      json
// @Param        page                 query  int     false  "Page number" default(1)
// @Param        limit                query  int     false  "Items per page" default(6)
// @Param        author               query  int     false  "Author ID"
// @Param        tags                 query  []string false "Tag slugs" collectionFormat(multi)
// @Param        is_favorited         query  int     false  "1 to show only favorites"
// @Param        is_in_shopping_cart  query  int     false  "1 to show only the shopping cart"
// @Success      200  {object}  Page[RecipeResponse]
// @Failure      400  {object}  ValidationErrorResponse
// @Router       /recipes [get]
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := viewerID(c)

	filter := repository.RecipeFilter{TagSlugs: c.QueryArray("tags")}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondFields(c, map[string]string{"author": "Enter a valid user id."})
			return
		}
		filter.AuthorID = uint(author)
	}
	if viewer != 0 && truthy(c.Query("is_favorited")) {
		filter.FavoritedBy = viewer
	}
	if viewer != 0 && truthy(c.Query("is_in_shopping_cart")) {
		filter.InCartOf = viewer
	}

	p := h.pageParams(c)
	recipes, total, err := h.repo.ListRecipes(ctx, filter, p.Offset(), p.Limit)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve recipes")
		return
	}

	results, err := h.recipeResponses(ctx, viewer, recipes)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve recipes")
		return
	}

	c.JSON(http.StatusOK, newPage(c, h.cfg.PublicURL, results, total, p))
}

// GetRecipe godoc
// @Summary      Get recipe by ID
// @Tags         recipes
// @Produce      json
// @Param        id   path      int  true  "Recipe ID"
// @Success      200  {object}  RecipeResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id} [get]
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id", "Recipe")
	if !ok {
		return
	}
	h.respondRecipe(c, http.StatusOK, id)
}

// CreateRecipe godoc
// @Summary      Publish a recipe
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        input body RecipeInput true "Recipe"
// @Success      201  {object}  RecipeResponse
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes [post]
func (h *Handler) CreateRecipe(c *gin.Context) {
	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	fields, err := h.validateRecipe(ctx, &input, true)
	if err != nil {
		respondInternal(c, err, "Failed to validate recipe")
		return
	}
	if len(fields) > 0 {
		respondFields(c, fields)
		return
	}

	image, ok := h.saveRecipeImage(c, input.Image)
	if !ok {
		return
	}

	id, err := h.repo.CreateRecipe(ctx, viewerID(c), recipeData(&input, image))
	if err != nil {
		h.discardImage(c, image)
		if errors.Is(err, repository.ErrAlreadyExists) {
			respondFields(c, map[string]string{"ingredients": "Ingredients must not repeat."})
			return
		}
		respondInternal(c, err, "Failed to create recipe")
		return
	}
	metrics.RecipesCreated.Inc()

	h.respondRecipe(c, http.StatusCreated, id)
}

// UpdateRecipe godoc
// @Summary      Update a recipe
// @Description  Only the author may update. Ingredients and tags are replaced as a whole.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id    path  int          true  "Recipe ID"
// @Param        input body  RecipeInput  true  "Recipe"
// @Success      200  {object}  RecipeResponse
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id} [patch]
func (h *Handler) UpdateRecipe(c *gin.Context) {
	recipe, ok := h.ownedRecipe(c)
	if !ok {
		return
	}

	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	fields, err := h.validateRecipe(ctx, &input, false)
	if err != nil {
		respondInternal(c, err, "Failed to validate recipe")
		return
	}
	if len(fields) > 0 {
		respondFields(c, fields)
		return
	}

	var image string
	if input.Image != "" {
		if image, ok = h.saveRecipeImage(c, input.Image); !ok {
			return
		}
	}

	if err := h.repo.UpdateRecipe(ctx, recipe.ID, recipeData(&input, image)); err != nil {
		h.discardImage(c, image)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, repository.ErrAlreadyExists):
			respondFields(c, map[string]string{"ingredients": "Ingredients must not repeat."})
		default:
			respondInternal(c, err, "Failed to update recipe")
		}
		return
	}
	if image != "" {
		h.discardImage(c, recipe.Image)
	}

	h.respondRecipe(c, http.StatusOK, recipe.ID)
}

// DeleteRecipe godoc
// @Summary      Delete a recipe
// @Tags         recipes
// @Security     TokenAuth
// @Param        id   path  int  true  "Recipe ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id} [delete]
func (h *Handler) DeleteRecipe(c *gin.Context) {
	recipe, ok := h.ownedRecipe(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteRecipe(c.Request.Context(), recipe.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		respondInternal(c, err, "Failed to delete recipe")
		return
	}
	h.discardImage(c, recipe.Image)

	c.Status(http.StatusNoContent)
}

// GetShortLink godoc
// @Summary      Short link to a recipe
// @Tags         recipes
// @Produce      json
// @Param        id   path      int  true  "Recipe ID"
// @Success      200  {object}  ShortLinkResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id}/get-link [get]
func (h *Handler) GetShortLink(c *gin.Context) {
	id, ok := pathID(c, "id", "Recipe")
	if !ok {
		return
	}

	exists, err := h.repo.RecipeExists(c.Request.Context(), id)
	if err != nil {
		respondInternal(c, err, "Failed to load recipe")
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	link := strings.TrimRight(h.cfg.PublicURL, "/") + "/s/" + shortlink.Encode(id)
	c.JSON(http.StatusOK, ShortLinkResponse{ShortLink: link})
}

// endregion

// region --- Helpers ---

func (h *Handler) respondRecipe(c *gin.Context, status int, id uint) {
	ctx := c.Request.Context()

	recipe, err := h.repo.GetRecipe(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to retrieve recipe")
		return
	}

	response, err := h.recipeResponse(ctx, viewerID(c), *recipe)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve recipe")
		return
	}
	c.JSON(status, response)
}

// ownedRecipe loads the recipe from the path and checks that the caller
// wrote it.
func (h *Handler) ownedRecipe(c *gin.Context) (*models.Recipe, bool) {
	id, ok := pathID(c, "id", "Recipe")
	if !ok {
		return nil, false
	}

	recipe, err := h.repo.GetRecipeSummary(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return nil, false
	}
	if err != nil {
		respondInternal(c, err, "Failed to load recipe")
		return nil, false
	}
	if recipe.AuthorID != viewerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only change your own recipes"})
		return nil, false
	}
	return recipe, true
}

// validateRecipe applies the checks binding tags cannot express: configured
// bounds and existence of referenced rows.
func (h *Handler) validateRecipe(ctx context.Context, input *RecipeInput, requireImage bool) (map[string]string, error) {
	fields := map[string]string{}

	if requireImage && input.Image == "" {
		fields["image"] = "This field is required."
	}
	if input.CookingTime < h.cfg.MinCookingTime || input.CookingTime > h.cfg.MaxCookingTime {
		fields["cooking_time"] = fmt.Sprintf("Must be between %d and %d.", h.cfg.MinCookingTime, h.cfg.MaxCookingTime)
	}

	ingredientIDs := make([]uint, len(input.Ingredients))
	for i, item := range input.Ingredients {
		ingredientIDs[i] = item.ID
		if item.Amount < h.cfg.MinIngredientAmount || item.Amount > h.cfg.MaxIngredientAmount {
			fields[fmt.Sprintf("ingredients[%d].amount", i)] = fmt.Sprintf(
				"Must be between %d and %d.", h.cfg.MinIngredientAmount, h.cfg.MaxIngredientAmount)
		}
	}

	missing, err := h.repo.MissingIngredientIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		fields["ingredients"] = "Ingredients do not exist: " + joinIDs(missing) + "."
	}

	missing, err = h.repo.MissingTagIDs(ctx, input.Tags)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		fields["tags"] = "Tags do not exist: " + joinIDs(missing) + "."
	}

	return fields, nil
}

func (h *Handler) saveRecipeImage(c *gin.Context, dataURI string) (string, bool) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		respondFields(c, map[string]string{"image": err.Error()})
		return "", false
	}
	url, err := h.store.Save(c.Request.Context(), "recipes", img)
	if err != nil {
		respondInternal(c, err, "Failed to store image")
		return "", false
	}
	return url, true
}

func recipeData(input *RecipeInput, image string) repository.RecipeInput {
	ingredients := make([]models.IngredientInRecipe, len(input.Ingredients))
	for i, item := range input.Ingredients {
		ingredients[i] = models.IngredientInRecipe{IngredientID: item.ID, Amount: item.Amount}
	}
	return repository.RecipeInput{
		Name:        input.Name,
		Text:        input.Text,
		Image:       image,
		CookingTime: input.CookingTime,
		Ingredients: ingredients,
		TagIDs:      input.Tags,
	}
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// endregion
