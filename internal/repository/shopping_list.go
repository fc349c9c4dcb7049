package repository

import (
	"context"
)

// ShoppingListItem is one aggregated line of the shopping list.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by ingredient name and unit and sorted by name.
func (r *Repository) ShoppingList(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("ingredient_in_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, CAST(SUM(ingredient_in_recipes.amount) AS BIGINT) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_in_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_in_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
