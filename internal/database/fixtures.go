package database

import (
	"context"
	"fmt"
	"os"

	"foodgram/backend/internal/models"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagFixture struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// LoadIngredients imports a JSON array of {"name", "measurement_unit"}
// objects. Rows that already exist are left untouched.
func LoadIngredients(ctx context.Context, db *gorm.DB, path string) (int, error) {
	var fixtures []ingredientFixture
	if err := readJSON(path, &fixtures); err != nil {
		return 0, err
	}

	ingredients := make([]models.Ingredient, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Name == "" || f.MeasurementUnit == "" {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{Name: f.Name, MeasurementUnit: f.MeasurementUnit})
	}
	if len(ingredients) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&ingredients, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to load ingredients: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// LoadTags imports a JSON array of {"name", "slug", "color"} objects.
func LoadTags(ctx context.Context, db *gorm.DB, path string) (int, error) {
	var fixtures []tagFixture
	if err := readJSON(path, &fixtures); err != nil {
		return 0, err
	}

	tags := make([]models.Tag, 0, len(fixtures))
	for _, f := range fixtures {
		if f.Name == "" || f.Slug == "" {
			continue
		}
		tags = append(tags, models.Tag{Name: f.Name, Slug: f.Slug, Color: f.Color})
	}
	if len(tags) == 0 {
		return 0, nil
	}

	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to load tags: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return nil
}
