package repository

import (
	"context"

	"foodgram/backend/internal/models"

	"gorm.io/gorm"
)

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return duplicate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UserExists lets the auth layer reject tokens of deleted accounts.
func (r *Repository) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// TakenCredentials reports whether the email or username already belong to
// someone.
func (r *Repository) TakenCredentials(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("email", "username").
		Where("email = ? OR username = ?", email, username).
		Find(&users).Error; err != nil {
		return false, false, err
	}
	for _, u := range users {
		emailTaken = emailTaken || u.Email == email
		usernameTaken = usernameTaken || u.Username == username
	}
	return emailTaken, usernameTaken, nil
}

func (r *Repository) ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{ID: userID}).Update("password_hash", hash).Error
}

// SetAvatar stores the avatar URL; an empty string clears it.
func (r *Repository) SetAvatar(ctx context.Context, userID uint, url string) error {
	return r.db.WithContext(ctx).Model(&models.User{ID: userID}).Update("avatar", url).Error
}

// DeleteUser removes the user together with owned recipes and every relation
// that points at either.
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipeIDs := tx.Model(&models.Recipe{}).Select("id").Where("author_id = ?", userID)

		steps := []*gorm.DB{
			tx.Where("user_id = ? OR recipe_id IN (?)", userID, recipeIDs).Delete(&models.Favorite{}),
			tx.Where("user_id = ? OR recipe_id IN (?)", userID, recipeIDs).Delete(&models.ShoppingCart{}),
			tx.Where("user_id = ? OR author_id = ?", userID, userID).Delete(&models.Subscription{}),
			tx.Where("recipe_id IN (?)", recipeIDs).Delete(&models.IngredientInRecipe{}),
			tx.Exec("DELETE FROM recipe_tags WHERE recipe_id IN (?)", recipeIDs),
			tx.Where("author_id = ?", userID).Delete(&models.Recipe{}),
		}
		for _, step := range steps {
			if step.Error != nil {
				return step.Error
			}
		}

		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
