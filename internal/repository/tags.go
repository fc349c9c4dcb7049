package repository

import (
	"context"

	"foodgram/backend/internal/models"
)

func (r *Repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *Repository) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// MissingTagIDs returns the ids from the input that have no row.
func (r *Repository) MissingTagIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(ctx, r, &models.Tag{}, ids)
}
