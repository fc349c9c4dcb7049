package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"foodgram/backend/internal/handler"
	"foodgram/backend/internal/testinfra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	register := map[string]any{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Ivan",
		"last_name":  "Petrov",
		"password":   "secret-pass",
	}
	w := env.do(http.MethodPost, "/api/users", register, "")
	requireStatus(t, w, http.StatusCreated)
	created := decode[handler.RegisteredUserResponse](t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "chef", created.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(http.MethodPost, "/api/users", register, "")
	requireStatus(t, w, http.StatusBadRequest)
	fields := decode[errorBody](t, w).Fields
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")

	w = env.do(http.MethodPost, "/api/auth/token/login", map[string]any{"email": "chef@example.com", "password": "wrong-pass"}, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = env.do(http.MethodPost, "/api/auth/token/login", map[string]any{"email": "chef@example.com", "password": "secret-pass"}, "")
	requireStatus(t, w, http.StatusOK)
	token := decode[handler.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = env.do(http.MethodGet, "/api/users/me", nil, token)
	requireStatus(t, w, http.StatusOK)
	me := decode[handler.UserResponse](t, w)
	assert.Equal(t, created.ID, me.ID)
	assert.Nil(t, me.Avatar)
	assert.False(t, me.IsSubscribed)

	requireStatus(t, env.do(http.MethodPost, "/api/auth/token/logout", nil, token), http.StatusNoContent)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"invalid email", "email", "not-an-email"},
		{"invalid username", "username", "bad name!"},
		{"short password", "password", "short"},
		{"missing first name", "first_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{
				"email":      "valid@example.com",
				"username":   "valid.user",
				"first_name": "Ivan",
				"last_name":  "Petrov",
				"password":   "secret-pass",
			}
			body[tt.field] = tt.value

			w := env.do(http.MethodPost, "/api/users", body, "")
			requireStatus(t, w, http.StatusBadRequest)
			assert.Contains(t, decode[errorBody](t, w).Fields, tt.field)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/users/me", "/api/users/subscriptions", "/api/recipes/download_shopping_cart"} {
		requireStatus(t, env.do(http.MethodGet, path, nil, ""), http.StatusUnauthorized)
		requireStatus(t, env.do(http.MethodGet, path, nil, "garbage"), http.StatusUnauthorized)
	}

	// Optional routes treat a bad token as anonymous.
	requireStatus(t, env.do(http.MethodGet, "/api/users", nil, "garbage"), http.StatusOK)
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t)
	user := testinfra.CreateUser(t, env.DB, "user")
	token := env.token(user)

	w := env.do(http.MethodPost, "/api/users/set_password", map[string]any{
		"current_password": "wrong-one", "new_password": "brand-new-pass",
	}, token)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, decode[errorBody](t, w).Fields, "current_password")

	w = env.do(http.MethodPost, "/api/users/set_password", map[string]any{
		"current_password": testinfra.Password, "new_password": "brand-new-pass",
	}, token)
	requireStatus(t, w, http.StatusNoContent)

	login := map[string]any{"email": user.Email, "password": "brand-new-pass"}
	requireStatus(t, env.do(http.MethodPost, "/api/auth/token/login", login, ""), http.StatusOK)
}

func TestAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := testinfra.CreateUser(t, env.DB, "user")
	other := testinfra.CreateUser(t, env.DB, "other")
	token := env.token(user)
	avatar := map[string]any{"avatar": pngDataURI}

	requireStatus(t, env.do(http.MethodDelete, "/api/users/me/avatar", nil, token), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPut, fmt.Sprintf("/api/users/%d/avatar", other.ID), avatar, token), http.StatusForbidden)
	requireStatus(t, env.do(http.MethodPut, "/api/users/me/avatar", map[string]any{"avatar": "nope"}, token), http.StatusBadRequest)

	w := env.do(http.MethodPut, fmt.Sprintf("/api/users/%d/avatar", user.ID), avatar, token)
	requireStatus(t, w, http.StatusOK)
	avatarURL := decode[handler.AvatarResponse](t, w).Avatar
	assert.True(t, strings.HasPrefix(avatarURL, "/media/avatars/"), avatarURL)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil, "")
	require.NotNil(t, decode[handler.UserResponse](t, w).Avatar)

	requireStatus(t, env.do(http.MethodDelete, "/api/users/me/avatar", nil, token), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodGet, avatarURL, nil, ""), http.StatusNotFound)

	w = env.do(http.MethodGet, "/api/users/me", nil, token)
	assert.Nil(t, decode[handler.UserResponse](t, w).Avatar)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	reader := testinfra.CreateUser(t, env.DB, "reader")
	author := testinfra.CreateUser(t, env.DB, "author")
	for _, name := range []string{"soup", "bread", "cake"} {
		testinfra.CreateRecipe(t, env.DB, author, name, nil)
	}
	token := env.token(reader)
	path := fmt.Sprintf("/api/users/%d/subscribe", author.ID)

	requireStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), nil, token), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/api/users/9999/subscribe", nil, token), http.StatusNotFound)
	requireStatus(t, env.do(http.MethodDelete, path, nil, token), http.StatusBadRequest)

	w := env.do(http.MethodPost, path+"?recipes_limit=2", nil, token)
	requireStatus(t, w, http.StatusCreated)
	followed := decode[handler.UserWithRecipesResponse](t, w)
	assert.Equal(t, author.ID, followed.ID)
	assert.True(t, followed.IsSubscribed)
	assert.EqualValues(t, 3, followed.RecipesCount)
	require.Len(t, followed.Recipes, 2)
	assert.Equal(t, "cake", followed.Recipes[0].Name)

	requireStatus(t, env.do(http.MethodPost, path, nil, token), http.StatusBadRequest)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), nil, token)
	assert.True(t, decode[handler.UserResponse](t, w).IsSubscribed)
	w = env.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), nil, "")
	assert.False(t, decode[handler.UserResponse](t, w).IsSubscribed)

	w = env.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil, token)
	requireStatus(t, w, http.StatusOK)
	page := decode[handler.Page[handler.UserWithRecipesResponse]](t, w)
	assert.EqualValues(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 1)
	assert.EqualValues(t, 3, page.Results[0].RecipesCount)

	requireStatus(t, env.do(http.MethodDelete, path, nil, token), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodDelete, path, nil, token), http.StatusBadRequest)

	w = env.do(http.MethodGet, "/api/users/subscriptions", nil, token)
	assert.EqualValues(t, 0, decode[handler.Page[handler.UserWithRecipesResponse]](t, w).Count)
}

func TestDeleteMe(t *testing.T) {
	env := newTestEnv(t)
	user := testinfra.CreateUser(t, env.DB, "user")
	recipe := testinfra.CreateRecipe(t, env.DB, user, "toast", nil)
	token := env.token(user)

	requireStatus(t, env.do(http.MethodDelete, "/api/users/me", nil, token), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipe.ID), nil, ""), http.StatusNotFound)
	requireStatus(t, env.do(http.MethodGet, "/api/users/me", nil, token), http.StatusUnauthorized)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := testinfra.CreateUser(t, env.DB, "alice")
	bob := testinfra.CreateUser(t, env.DB, "bob")
	milk := testinfra.CreateIngredient(t, env.DB, "Молоко", "мл")
	tag := testinfra.CreateTag(t, env.DB, "breakfast")
	recipe := testinfra.CreateRecipe(t, env.DB, bob, "toast", nil)
	token := env.token(alice)

	requireStatus(t, env.do(http.MethodDelete, "/api/users/me", nil, token), http.StatusNoContent)

	requireStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID), nil, token), http.StatusUnauthorized)
	requireStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), nil, token), http.StatusUnauthorized)
	requireStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", bob.ID), nil, token), http.StatusUnauthorized)

	body := recipeBody([]map[string]any{ingredientItem(milk.ID, 100)}, []uint{tag.ID})
	requireStatus(t, env.do(http.MethodPost, "/api/recipes", body, token), http.StatusUnauthorized)

	// Optional routes fall back to an anonymous view.
	w := env.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipe.ID), nil, token)
	requireStatus(t, w, http.StatusOK)
	assert.False(t, decode[handler.RecipeResponse](t, w).IsFavorited)
}

func TestUsersPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := range 3 {
		testinfra.CreateUser(t, env.DB, fmt.Sprintf("user%d", i))
	}

	w := env.do(http.MethodGet, "/api/users?limit=2&page=2", nil, "")
	requireStatus(t, w, http.StatusOK)
	page := decode[handler.Page[handler.UserResponse]](t, w)
	assert.EqualValues(t, 3, page.Count)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://testserver/api/users?limit=2", *page.Previous)

	requireStatus(t, env.do(http.MethodGet, "/api/users/abc", nil, ""), http.StatusNotFound)
	requireStatus(t, env.do(http.MethodGet, "/api/users/9999", nil, ""), http.StatusNotFound)
}

func TestReferenceData(t *testing.T) {
	env := newTestEnv(t)
	milk := testinfra.CreateIngredient(t, env.DB, "Молоко", "мл")
	testinfra.CreateIngredient(t, env.DB, "Мука", "г")
	testinfra.CreateIngredient(t, env.DB, "Соль", "г")
	tag := testinfra.CreateTag(t, env.DB, "breakfast")

	for _, prefix := range []string{"Мол", "мол", "МОЛ"} {
		w := env.do(http.MethodGet, "/api/ingredients?name="+url.QueryEscape(prefix), nil, "")
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, []handler.IngredientResponse{
			{ID: milk.ID, Name: "Молоко", MeasurementUnit: "мл"},
		}, decode[[]handler.IngredientResponse](t, w), prefix)
	}

	w := env.do(http.MethodGet, "/api/ingredients?name=zzz", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Empty(t, decode[[]handler.IngredientResponse](t, w))

	w = env.do(http.MethodGet, "/api/ingredients", nil, "")
	assert.Len(t, decode[[]handler.IngredientResponse](t, w), 3)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/ingredients/%d", milk.ID), nil, "")
	requireStatus(t, w, http.StatusOK)
	requireStatus(t, env.do(http.MethodGet, "/api/ingredients/9999", nil, ""), http.StatusNotFound)

	w = env.do(http.MethodGet, "/api/tags", nil, "")
	requireStatus(t, w, http.StatusOK)
	tags := decode[[]handler.TagResponse](t, w)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].Slug)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/tags/%d", tag.ID), nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, tag.Color, decode[handler.TagResponse](t, w).Color)
	requireStatus(t, env.do(http.MethodGet, "/api/tags/9999", nil, ""), http.StatusNotFound)
}

func TestPingAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/ping", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = env.do(http.MethodGet, "/metrics", nil, "")
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
