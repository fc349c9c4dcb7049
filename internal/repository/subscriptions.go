package repository

import (
	"context"

	"foodgram/backend/internal/models"

	"gorm.io/gorm"
)

// Subscribe makes userID follow authorID.
func (r *Repository) Subscribe(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return ErrSelfSubscription
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		return duplicate(tx.Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error)
	})
}

func (r *Repository) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotExists
	}
	return nil
}

// SubscribedAuthorIDs returns which of authorIDs userID follows.
func (r *Repository) SubscribedAuthorIDs(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(authorIDs) == 0 {
		return result, nil
	}

	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListSubscriptions returns the authors userID follows, oldest subscription
// first.
func (r *Repository) ListSubscriptions(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.created_at, users.id").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// RecipeCounts returns the number of recipes for each author.
func (r *Repository) RecipeCounts(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.AuthorID] = row.Total
	}
	return result, nil
}

// RecentRecipesByAuthors returns up to limit newest recipes per author in a
// single query, keyed by author id. A limit below 1 returns all of them.
func (r *Repository) RecentRecipesByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]models.Recipe, error) {
	result := make(map[uint][]models.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	db := r.db.WithContext(ctx)
	var query *gorm.DB
	if limit > 0 {
		ranked := db.Model(&models.Recipe{}).
			Select("recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY created_at DESC, id DESC) AS rn").
			Where("author_id IN ?", authorIDs)
		query = db.Table("(?) AS ranked", ranked).Where("rn <= ?", limit)
	} else {
		query = db.Model(&models.Recipe{}).Where("author_id IN ?", authorIDs)
	}

	var recipes []models.Recipe
	if err := query.Order("created_at DESC, id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	for _, recipe := range recipes {
		result[recipe.AuthorID] = append(result[recipe.AuthorID], recipe)
	}
	return result, nil
}

// AuthorRecipes returns the newest recipes of an author. A limit below 1
// returns all of them.
func (r *Repository) AuthorRecipes(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	query := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
