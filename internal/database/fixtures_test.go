package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"foodgram/backend/internal/database"
	"foodgram/backend/internal/models"
	"foodgram/backend/internal/testinfra"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	db := testinfra.NewDB(t)
	ctx := context.Background()
	path := writeFixture(t, `[
		{"name": "молоко", "measurement_unit": "мл"},
		{"name": "мука", "measurement_unit": "г"},
		{"name": "", "measurement_unit": "г"}
	]`)

	n, err := database.LoadIngredients(ctx, db, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = database.LoadIngredients(ctx, db, path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestLoadTags(t *testing.T) {
	db := testinfra.NewDB(t)
	n, err := database.LoadTags(context.Background(), db, filepath.Join("..", "..", "data", "tags.json"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var tag models.Tag
	require.NoError(t, db.Where("slug = ?", "breakfast").First(&tag).Error)
	assert.Equal(t, "#E26C2D", tag.Color)
}

func TestLoadFixtureErrors(t *testing.T) {
	db := testinfra.NewDB(t)
	ctx := context.Background()

	_, err := database.LoadIngredients(ctx, db, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = database.LoadTags(ctx, db, writeFixture(t, `{not json`))
	assert.Error(t, err)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := database.Connect(context.Background(), "mysql", "dsn", zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
