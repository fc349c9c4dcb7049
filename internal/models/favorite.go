package models

import "time"

// Favorite bookmarks a recipe for a user.
type Favorite struct {
	UserID    uint `gorm:"primaryKey"`
	RecipeID  uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

// ShoppingCart marks a recipe whose ingredients go to the user's shopping list.
type ShoppingCart struct {
	UserID    uint `gorm:"primaryKey"`
	RecipeID  uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}
