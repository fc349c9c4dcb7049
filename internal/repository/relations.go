package repository

import (
	"context"

	"foodgram/backend/internal/models"

	"gorm.io/gorm"
)

type userRecipe interface {
	models.Favorite | models.ShoppingCart
}

func (r *Repository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return addPair(ctx, r.db, &models.Favorite{UserID: userID, RecipeID: recipeID})
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return removePair[models.Favorite](ctx, r.db, userID, recipeID)
}

func (r *Repository) AddToShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return addPair(ctx, r.db, &models.ShoppingCart{UserID: userID, RecipeID: recipeID})
}

func (r *Repository) RemoveFromShoppingCart(ctx context.Context, userID, recipeID uint) error {
	return removePair[models.ShoppingCart](ctx, r.db, userID, recipeID)
}

// FavoriteRecipeIDs reports which of recipeIDs userID has favorited.
func (r *Repository) FavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pairedRecipeIDs[models.Favorite](ctx, r.db, userID, recipeIDs)
}

// CartRecipeIDs reports which of recipeIDs are in the user's shopping cart.
func (r *Repository) CartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pairedRecipeIDs[models.ShoppingCart](ctx, r.db, userID, recipeIDs)
}

func addPair[T userRecipe](ctx context.Context, db *gorm.DB, row *T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(row).Where(row).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		return duplicate(tx.Omit("User", "Recipe").Create(row).Error)
	})
}

func removePair[T userRecipe](ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotExists
	}
	return nil
}

func pairedRecipeIDs[T userRecipe](ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}

	var ids []uint
	if err := db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
