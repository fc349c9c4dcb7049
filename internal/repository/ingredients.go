package repository

import (
	"context"
	"strings"

	"foodgram/backend/internal/models"
)

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix returns everything.
func (r *Repository) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := r.db.WithContext(ctx).Order("name").Order("id")
	if prefix != "" {
		pattern := escapeLike(strings.ToLower(prefix)) + "%"
		query = query.Where(`name_lower LIKE ? ESCAPE '\'`, pattern)
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *Repository) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}

// MissingIngredientIDs returns the ids from the input that have no row.
func (r *Repository) MissingIngredientIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(ctx, r, &models.Ingredient{}, ids)
}

func missingIDs(ctx context.Context, r *Repository, model any, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := r.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
