package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is reference data loaded from fixtures.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit"`
	// NameLower backs the case-insensitive prefix search. SQLite's LOWER
	// only folds ASCII, so the folding happens in Go.
	NameLower string `gorm:"size:128;not null;default:'';index"`
}

func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.NameLower = strings.ToLower(i.Name)
	return nil
}
