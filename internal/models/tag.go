package models

// Tag labels recipes (e.g., "Breakfast", "Dinner").
type Tag struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:32;uniqueIndex;not null"`
	Slug  string `gorm:"size:32;uniqueIndex;not null"`
	Color string `gorm:"size:7"`
}
