package server

import (
	"bytes"
	"encoding/base64"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram/backend/internal/config"
	"foodgram/backend/internal/handler"
	"foodgram/backend/internal/models"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/storage"
	"foodgram/backend/internal/testinfra"
	"foodgram/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t      *testing.T
	DB     *gorm.DB
	Cfg    *config.Config
	Tokens *jwt.Manager
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.DBDriver = "sqlite"
	cfg.PublicURL = "http://testserver"
	cfg.MediaRoot = t.TempDir()

	db := testinfra.NewDB(t)
	store, err := storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	require.NoError(t, err)

	tokens := jwt.NewManager(cfg.JWTSecret, time.Hour)
	repo := repository.New(db)
	h := handler.New(repo, store, tokens, cfg)

	return &testEnv{
		t:      t,
		DB:     db,
		Cfg:    cfg,
		Tokens: tokens,
		Router: NewRouter(Deps{Config: cfg, Handler: h, Tokens: tokens, Users: repo, Logger: zerolog.Nop()}),
	}
}

func (e *testEnv) token(user models.User) string {
	e.t.Helper()
	token, err := e.Tokens.GenerateToken(user.ID)
	require.NoError(e.t, err)
	return token
}

// do sends body as JSON when it is not nil and authenticates with token when
// it is not empty.
func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// recipeBody is a valid create payload referencing seeded rows.
func recipeBody(ingredients []map[string]any, tags []uint) map[string]any {
	return map[string]any{
		"ingredients":  ingredients,
		"tags":         tags,
		"image":        pngDataURI,
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
	}
}

func ingredientItem(id uint, amount int) map[string]any {
	return map[string]any{"id": id, "amount": amount}
}
