package handler

import (
	"context"

	"foodgram/backend/internal/models"
)

// region --- Response DTOs ---

// UserResponse is the public profile as seen by a viewer.
type UserResponse struct {
	Email        string  `json:"email" example:"chef@example.com"`
	ID           uint    `json:"id" example:"1"`
	Username     string  `json:"username" example:"chef"`
	FirstName    string  `json:"first_name" example:"Ivan"`
	LastName     string  `json:"last_name" example:"Petrov"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar" example:"/media/avatars/0b6c.png"`
}

// UserWithRecipesResponse is a followed author with a preview of their recipes.
type UserWithRecipesResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count" example:"3"`
}

type TagResponse struct {
	ID    uint   `json:"id" example:"1"`
	Name  string `json:"name" example:"Breakfast"`
	Slug  string `json:"slug" example:"breakfast"`
	Color string `json:"color" example:"#E26C2D"`
}

type IngredientResponse struct {
	ID              uint   `json:"id" example:"1"`
	Name            string `json:"name" example:"Молоко"`
	MeasurementUnit string `json:"measurement_unit" example:"мл"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id" example:"1"`
	Name            string `json:"name" example:"Молоко"`
	MeasurementUnit string `json:"measurement_unit" example:"мл"`
	Amount          int    `json:"amount" example:"100"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id" example:"1"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name" example:"Pancakes"`
	Image            string                     `json:"image" example:"/media/recipes/5f1d.png"`
	Text             string                     `json:"text" example:"Mix and fry."`
	CookingTime      int                        `json:"cooking_time" example:"20"`
}

type ShortRecipeResponse struct {
	ID          uint   `json:"id" example:"1"`
	Name        string `json:"name" example:"Pancakes"`
	Image       string `json:"image" example:"/media/recipes/5f1d.png"`
	CookingTime int    `json:"cooking_time" example:"20"`
}

// endregion

// region --- Builders ---

func newTagResponse(tag models.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug, Color: tag.Color}
}

func newIngredientResponse(ingredient models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func newShortRecipeResponse(recipe models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func newUserResponse(user models.User, subscribed bool) UserResponse {
	var avatar *string
	if user.Avatar != "" {
		a := user.Avatar
		avatar = &a
	}
	return UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
		Avatar:       avatar,
	}
}

// userResponses projects users for viewerID; anonymous viewers see
// is_subscribed false everywhere.
func (h *Handler) userResponses(ctx context.Context, viewerID uint, users []models.User) ([]UserResponse, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := h.repo.SubscribedAuthorIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u, subscribed[u.ID])
	}
	return out, nil
}

func (h *Handler) userResponse(ctx context.Context, viewerID uint, user models.User) (UserResponse, error) {
	out, err := h.userResponses(ctx, viewerID, []models.User{user})
	if err != nil {
		return UserResponse{}, err
	}
	return out[0], nil
}

// authorResponses adds a recipe preview and count to each author. A
// recipesLimit below 1 includes every recipe.
func (h *Handler) authorResponses(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]UserWithRecipesResponse, error) {
	users, err := h.userResponses(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := h.repo.RecipeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	recipes, err := h.repo.RecentRecipesByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, err
	}

	out := make([]UserWithRecipesResponse, len(authors))
	for i, a := range authors {
		short := make([]ShortRecipeResponse, len(recipes[a.ID]))
		for j, r := range recipes[a.ID] {
			short[j] = newShortRecipeResponse(r)
		}
		out[i] = UserWithRecipesResponse{
			UserResponse: users[i],
			Recipes:      short,
			RecipesCount: counts[a.ID],
		}
	}
	return out, nil
}

// recipeResponses projects fully loaded recipes for viewerID.
func (h *Handler) recipeResponses(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authors := make([]models.User, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authors[i] = r.Author
	}

	favorited, err := h.repo.FavoriteRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := h.repo.CartRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	authorViews, err := h.userResponses(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, len(recipes))
	for i, r := range recipes {
		tags := make([]TagResponse, len(r.Tags))
		for j, t := range r.Tags {
			tags[j] = newTagResponse(t)
		}
		ingredients := make([]RecipeIngredientResponse, len(r.Ingredients))
		for j, item := range r.Ingredients {
			ingredients[j] = RecipeIngredientResponse{
				ID:              item.IngredientID,
				Name:            item.Ingredient.Name,
				MeasurementUnit: item.Ingredient.MeasurementUnit,
				Amount:          item.Amount,
			}
		}

		out[i] = RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           authorViews[i],
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

func (h *Handler) recipeResponse(ctx context.Context, viewerID uint, recipe models.Recipe) (RecipeResponse, error) {
	out, err := h.recipeResponses(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return RecipeResponse{}, err
	}
	return out[0], nil
}

// endregion
