package repository

import (
	"context"

	"foodgram/backend/internal/models"

	"gorm.io/gorm"
)

// RecipeFilter narrows ListRecipes. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string
	FavoritedBy uint
	InCartOf    uint
}

// RecipeInput is the writable part of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []models.IngredientInRecipe
	TagIDs      []uint
}

func (r *Repository) filteredRecipes(ctx context.Context, f RecipeFilter) *gorm.DB {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Recipe{})

	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if f.FavoritedBy != 0 {
		favorited := db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy)
		query = query.Where("recipes.id IN (?)", favorited)
	}
	if f.InCartOf != 0 {
		inCart := db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", f.InCartOf)
		query = query.Where("recipes.id IN (?)", inCart)
	}
	return query
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_in_recipes.id") }).
		Preload("Ingredients.Ingredient")
}

// ListRecipes returns one page of recipes, newest first, with author, tags and
// ingredients loaded.
func (r *Repository) ListRecipes(ctx context.Context, f RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.filteredRecipes(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := withDetails(r.filteredRecipes(ctx, f)).
		Order("recipes.created_at DESC, recipes.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *Repository) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// GetRecipeSummary loads the recipe row without associations.
func (r *Repository) GetRecipeSummary(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (r *Repository) RecipeExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateRecipe inserts the recipe with its ingredient rows and tags in one
// transaction and returns the new id.
func (r *Repository) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (uint, error) {
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(&recipe).Error; err != nil {
			return err
		}
		return replaceRecipeRelations(tx, &recipe, in)
	})
	if err != nil {
		return 0, duplicate(err)
	}
	return recipe.ID, nil
}

// UpdateRecipe overwrites the recipe fields. Ingredient rows and tags are
// deleted and inserted again rather than diffed. An empty Image keeps the
// current one.
func (r *Repository) UpdateRecipe(ctx context.Context, id uint, in RecipeInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			return notFound(err)
		}

		updates := map[string]any{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.Image != "" {
			updates["image"] = in.Image
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		return replaceRecipeRelations(tx, &recipe, in)
	})
	return duplicate(err)
}

func replaceRecipeRelations(tx *gorm.DB, recipe *models.Recipe, in RecipeInput) error {
	rows := make([]models.IngredientInRecipe, len(in.Ingredients))
	for i, item := range in.Ingredients {
		rows[i] = models.IngredientInRecipe{
			RecipeID:     recipe.ID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
	}
	if len(rows) > 0 {
		if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
			return err
		}
	}

	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
		return err
	}
	if len(in.TagIDs) == 0 {
		return nil
	}
	links := make([]map[string]any, len(in.TagIDs))
	for i, id := range in.TagIDs {
		links[i] = map[string]any{"recipe_id": recipe.ID, "tag_id": id}
	}
	return tx.Table("recipe_tags").Create(links).Error
}

func (r *Repository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []*gorm.DB{
			tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}),
			tx.Where("recipe_id = ?", id).Delete(&models.ShoppingCart{}),
			tx.Where("recipe_id = ?", id).Delete(&models.IngredientInRecipe{}),
			tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id),
		}
		for _, step := range steps {
			if step.Error != nil {
				return step.Error
			}
		}

		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
