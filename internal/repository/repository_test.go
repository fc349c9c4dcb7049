package repository

import (
	"context"
	"testing"

	"foodgram/backend/internal/models"
	"foodgram/backend/internal/testinfra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return New(testinfra.NewDB(t))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\`, escapeLike(`c:\`))
	assert.Equal(t, "Молоко", escapeLike("Молоко"))
}

func TestListIngredientsPrefix(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	testinfra.CreateIngredient(t, db, "Молоко", "мл")
	testinfra.CreateIngredient(t, db, "Вермишель", "г")
	testinfra.CreateIngredient(t, db, "Sugar", "g")
	testinfra.CreateIngredient(t, db, "a_b", "g")
	testinfra.CreateIngredient(t, db, "axb", "g")

	names := func(prefix string) []string {
		ingredients, err := repo.ListIngredients(ctx, prefix)
		require.NoError(t, err)
		out := make([]string, len(ingredients))
		for i, ing := range ingredients {
			out[i] = ing.Name
		}
		return out
	}

	assert.Equal(t, []string{"Молоко"}, names("Мол"))
	assert.Equal(t, []string{"Молоко"}, names("мол"))
	assert.Equal(t, []string{"Молоко"}, names("МОЛ"))
	assert.Equal(t, []string{"Вермишель"}, names("вЕрМ"))
	assert.Equal(t, []string{"Sugar"}, names("su"))
	assert.Equal(t, []string{"Sugar"}, names("SUG"))
	assert.Equal(t, []string{"a_b"}, names("a_"))
	assert.Empty(t, names("ол"))
	assert.Len(t, names(""), 5)
}

func TestShoppingListAggregates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	author := testinfra.CreateUser(t, db, "author")
	buyer := testinfra.CreateUser(t, db, "buyer")
	other := testinfra.CreateUser(t, db, "other")

	milk := testinfra.CreateIngredient(t, db, "Молоко", "мл")
	flour := testinfra.CreateIngredient(t, db, "Мука", "г")
	salt := testinfra.CreateIngredient(t, db, "Соль", "г")

	pancakes := testinfra.CreateRecipe(t, db, author, "pancakes", []testinfra.Amount{{Ingredient: milk, Amount: 100}, {Ingredient: flour, Amount: 200}})
	porridge := testinfra.CreateRecipe(t, db, author, "porridge", []testinfra.Amount{{Ingredient: milk, Amount: 50}})
	soup := testinfra.CreateRecipe(t, db, author, "soup", []testinfra.Amount{{Ingredient: salt, Amount: 5}})

	require.NoError(t, repo.AddToShoppingCart(ctx, buyer.ID, pancakes.ID))
	require.NoError(t, repo.AddToShoppingCart(ctx, buyer.ID, porridge.ID))
	require.NoError(t, repo.AddToShoppingCart(ctx, other.ID, soup.ID))

	items, err := repo.ShoppingList(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, []ShoppingListItem{
		{Name: "Молоко", MeasurementUnit: "мл", Amount: 150},
		{Name: "Мука", MeasurementUnit: "г", Amount: 200},
	}, items)

	items, err = repo.ShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubscriptions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	reader := testinfra.CreateUser(t, db, "reader")
	chef := testinfra.CreateUser(t, db, "chef")
	baker := testinfra.CreateUser(t, db, "baker")

	assert.ErrorIs(t, repo.Subscribe(ctx, reader.ID, reader.ID), ErrSelfSubscription)
	require.NoError(t, repo.Subscribe(ctx, reader.ID, chef.ID))
	assert.ErrorIs(t, repo.Subscribe(ctx, reader.ID, chef.ID), ErrAlreadyExists)
	require.NoError(t, repo.Subscribe(ctx, reader.ID, baker.ID))

	subscribed, err := repo.SubscribedAuthorIDs(ctx, reader.ID, []uint{chef.ID, baker.ID, reader.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{chef.ID: true, baker.ID: true}, subscribed)

	anonymous, err := repo.SubscribedAuthorIDs(ctx, 0, []uint{chef.ID})
	require.NoError(t, err)
	assert.Empty(t, anonymous)

	authors, total, err := repo.ListSubscriptions(ctx, reader.ID, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 1)

	require.NoError(t, repo.Unsubscribe(ctx, reader.ID, chef.ID))
	assert.ErrorIs(t, repo.Unsubscribe(ctx, reader.ID, chef.ID), ErrNotExists)
}

func TestRecipeCountsAndAuthorRecipes(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	chef := testinfra.CreateUser(t, db, "chef")
	idle := testinfra.CreateUser(t, db, "idle")
	for _, name := range []string{"one", "two", "three"} {
		testinfra.CreateRecipe(t, db, chef, name, nil)
	}

	counts, err := repo.RecipeCounts(ctx, []uint{chef.ID, idle.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts[chef.ID])
	assert.EqualValues(t, 0, counts[idle.ID])

	limited, err := repo.AuthorRecipes(ctx, chef.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "three", limited[0].Name)

	all, err := repo.AuthorRecipes(ctx, chef.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecentRecipesByAuthors(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	chef := testinfra.CreateUser(t, db, "chef")
	baker := testinfra.CreateUser(t, db, "baker")
	idle := testinfra.CreateUser(t, db, "idle")
	for _, name := range []string{"one", "two", "three"} {
		testinfra.CreateRecipe(t, db, chef, name, nil)
	}
	testinfra.CreateRecipe(t, db, baker, "bread", nil)

	var queries int
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		queries++
	}))

	names := func(recipes []models.Recipe) []string {
		out := make([]string, len(recipes))
		for i, r := range recipes {
			out[i] = r.Name
		}
		return out
	}

	ids := []uint{chef.ID, baker.ID, idle.ID}
	limited, err := repo.RecentRecipesByAuthors(ctx, ids, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, queries)
	assert.Equal(t, []string{"three", "two"}, names(limited[chef.ID]))
	assert.Equal(t, []string{"bread"}, names(limited[baker.ID]))
	assert.Empty(t, limited[idle.ID])

	all, err := repo.RecentRecipesByAuthors(ctx, ids, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, queries)
	assert.Equal(t, []string{"three", "two", "one"}, names(all[chef.ID]))

	none, err := repo.RecentRecipesByAuthors(ctx, nil, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFavoritesAndCart(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	user := testinfra.CreateUser(t, db, "user")
	recipe := testinfra.CreateRecipe(t, db, user, "toast", nil)

	require.NoError(t, repo.AddFavorite(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, repo.AddFavorite(ctx, user.ID, recipe.ID), ErrAlreadyExists)

	favorited, err := repo.FavoriteRecipeIDs(ctx, user.ID, []uint{recipe.ID})
	require.NoError(t, err)
	assert.True(t, favorited[recipe.ID])

	inCart, err := repo.CartRecipeIDs(ctx, user.ID, []uint{recipe.ID})
	require.NoError(t, err)
	assert.False(t, inCart[recipe.ID])

	assert.ErrorIs(t, repo.RemoveFromShoppingCart(ctx, user.ID, recipe.ID), ErrNotExists)
	require.NoError(t, repo.AddToShoppingCart(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, repo.AddToShoppingCart(ctx, user.ID, recipe.ID), ErrAlreadyExists)

	require.NoError(t, repo.RemoveFavorite(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, repo.RemoveFavorite(ctx, user.ID, recipe.ID), ErrNotExists)
}

func TestCreateUpdateDeleteRecipe(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	author := testinfra.CreateUser(t, db, "author")
	milk := testinfra.CreateIngredient(t, db, "Молоко", "мл")
	eggs := testinfra.CreateIngredient(t, db, "Яйца", "шт.")
	breakfast := testinfra.CreateTag(t, db, "breakfast")
	dinner := testinfra.CreateTag(t, db, "dinner")

	id, err := repo.CreateRecipe(ctx, author.ID, RecipeInput{
		Name:        "Omelette",
		Text:        "Whisk and fry.",
		Image:       "/media/recipes/omelette.png",
		CookingTime: 10,
		Ingredients: []models.IngredientInRecipe{{IngredientID: milk.ID, Amount: 50}, {IngredientID: eggs.ID, Amount: 3}},
		TagIDs:      []uint{breakfast.ID},
	})
	require.NoError(t, err)

	recipe, err := repo.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, author.ID, recipe.Author.ID)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "Молоко", recipe.Ingredients[0].Ingredient.Name)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)

	require.NoError(t, repo.UpdateRecipe(ctx, id, RecipeInput{
		Name:        "Big omelette",
		Text:        "Whisk more.",
		CookingTime: 15,
		Ingredients: []models.IngredientInRecipe{{IngredientID: eggs.ID, Amount: 6}},
		TagIDs:      []uint{dinner.ID},
	}))

	recipe, err = repo.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Big omelette", recipe.Name)
	assert.Equal(t, "/media/recipes/omelette.png", recipe.Image, "empty image keeps the current one")
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 6, recipe.Ingredients[0].Amount)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dinner", recipe.Tags[0].Slug)

	err = repo.UpdateRecipe(ctx, id, RecipeInput{
		Name:        "Broken",
		Text:        "x",
		CookingTime: 1,
		Ingredients: []models.IngredientInRecipe{{IngredientID: eggs.ID, Amount: 1}, {IngredientID: eggs.ID, Amount: 2}},
	})
	assert.ErrorIs(t, err, ErrAlreadyExists, "the unique index rejects repeated ingredients")

	require.NoError(t, repo.AddFavorite(ctx, author.ID, id))
	require.NoError(t, repo.DeleteRecipe(ctx, id))
	_, err = repo.GetRecipe(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteRecipe(ctx, id), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateRecipe(ctx, id, RecipeInput{}), ErrNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	alice := testinfra.CreateUser(t, db, "alice")
	bob := testinfra.CreateUser(t, db, "bob")
	breakfast := testinfra.CreateTag(t, db, "breakfast")
	lunch := testinfra.CreateTag(t, db, "lunch")

	porridge := testinfra.CreateRecipe(t, db, alice, "porridge", nil, breakfast)
	salad := testinfra.CreateRecipe(t, db, alice, "salad", nil, lunch)
	testinfra.CreateRecipe(t, db, bob, "toast", nil, breakfast, lunch)

	require.NoError(t, repo.AddFavorite(ctx, bob.ID, porridge.ID))
	require.NoError(t, repo.AddToShoppingCart(ctx, bob.ID, salad.ID))

	list := func(f RecipeFilter) ([]string, int64) {
		recipes, total, err := repo.ListRecipes(ctx, f, 0, 10)
		require.NoError(t, err)
		names := make([]string, len(recipes))
		for i, r := range recipes {
			names[i] = r.Name
		}
		return names, total
	}

	names, total := list(RecipeFilter{})
	assert.Equal(t, []string{"toast", "salad", "porridge"}, names)
	assert.EqualValues(t, 3, total)

	names, _ = list(RecipeFilter{AuthorID: alice.ID})
	assert.Equal(t, []string{"salad", "porridge"}, names)

	names, _ = list(RecipeFilter{TagSlugs: []string{"breakfast"}})
	assert.Equal(t, []string{"toast", "porridge"}, names)

	names, total = list(RecipeFilter{TagSlugs: []string{"breakfast", "lunch"}})
	assert.Equal(t, []string{"toast", "salad", "porridge"}, names, "a recipe with both tags appears once")
	assert.EqualValues(t, 3, total)

	names, _ = list(RecipeFilter{FavoritedBy: bob.ID})
	assert.Equal(t, []string{"porridge"}, names)

	names, _ = list(RecipeFilter{InCartOf: bob.ID})
	assert.Equal(t, []string{"salad"}, names)

	recipes, total, err := repo.ListRecipes(ctx, RecipeFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, recipes, 1)
	assert.Equal(t, porridge.ID, recipes[0].ID)
}

func TestDeleteUserCascades(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	db := repo.DB()

	chef := testinfra.CreateUser(t, db, "chef")
	fan := testinfra.CreateUser(t, db, "fan")
	milk := testinfra.CreateIngredient(t, db, "Молоко", "мл")
	recipe := testinfra.CreateRecipe(t, db, chef, "latte", []testinfra.Amount{{Ingredient: milk, Amount: 200}})

	require.NoError(t, repo.Subscribe(ctx, fan.ID, chef.ID))
	require.NoError(t, repo.AddFavorite(ctx, fan.ID, recipe.ID))
	require.NoError(t, repo.AddToShoppingCart(ctx, fan.ID, recipe.ID))

	require.NoError(t, repo.DeleteUser(ctx, chef.ID))

	_, err := repo.GetUser(ctx, chef.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	exists, err := repo.RecipeExists(ctx, recipe.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	items, err := repo.ShoppingList(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, total, err := repo.ListSubscriptions(ctx, fan.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, repo.DeleteUser(ctx, chef.ID), ErrNotFound)
}

func TestTakenCredentials(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	testinfra.CreateUser(t, repo.DB(), "chef")

	emailTaken, usernameTaken, err := repo.TakenCredentials(ctx, "chef@example.com", "newbie")
	require.NoError(t, err)
	assert.True(t, emailTaken)
	assert.False(t, usernameTaken)

	emailTaken, usernameTaken, err = repo.TakenCredentials(ctx, "new@example.com", "chef")
	require.NoError(t, err)
	assert.False(t, emailTaken)
	assert.True(t, usernameTaken)
}

func TestMissingIDs(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	tag := testinfra.CreateTag(t, repo.DB(), "breakfast")

	missing, err := repo.MissingTagIDs(ctx, []uint{tag.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []uint{999}, missing)

	missing, err = repo.MissingIngredientIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
