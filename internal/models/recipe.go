package models

import "time"

// Recipe is a dish published by an author.
type Recipe struct {
	ID          uint      `gorm:"primaryKey"`
	AuthorID    uint      `gorm:"not null;index"`
	Name        string    `gorm:"size:256;not null"`
	Image       string    `gorm:"size:512;not null"`
	Text        string    `gorm:"type:text;not null"`
	CookingTime int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`

	Author      User                 `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tags        []Tag                `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE;"`
	Ingredients []IngredientInRecipe `gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// IngredientInRecipe carries the amount of one ingredient within one recipe.
type IngredientInRecipe struct {
	ID           uint `gorm:"primaryKey"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Amount       int  `gorm:"not null"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE;"`
}

func (IngredientInRecipe) TableName() string {
	return "ingredient_in_recipes"
}
