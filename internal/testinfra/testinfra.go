// Package testinfra provides throwaway databases and seed helpers for tests.
package testinfra

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"foodgram/backend/internal/database"
	"foodgram/backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every seeded user.
const Password = "password123"

// NewDB opens a migrated SQLite database in the test's temp dir with foreign
// keys enforced.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := database.Connect(context.Background(), "sqlite", dsn, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First " + username,
		LastName:     "Last " + username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func CreateTag(t testing.TB, db *gorm.DB, slug string) models.Tag {
	t.Helper()

	tag := models.Tag{Name: "Tag " + slug, Slug: slug, Color: "#000000"}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its ingredient rows and tags.
func CreateRecipe(t testing.TB, db *gorm.DB, author models.User, name string, amounts []Amount, tags ...models.Tag) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("/media/recipes/%s.png", name),
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(&recipe).Error)

	for _, a := range amounts {
		row := models.IngredientInRecipe{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount}
		require.NoError(t, db.Omit("Ingredient").Create(&row).Error)
	}
	for _, tag := range tags {
		require.NoError(t, db.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tag.ID).Error)
	}
	return recipe
}
