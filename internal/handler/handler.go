package handler

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/backend/internal/auth"
	"foodgram/backend/internal/config"
	"foodgram/backend/internal/logging"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/storage"
	"foodgram/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// TokenIssuer signs auth tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID uint) (string, error)
}

// Handler serves the JSON API.
type Handler struct {
	repo   *repository.Repository
	store  storage.Store
	tokens TokenIssuer
	cfg    *config.Config
}

func New(repo *repository.Repository, store storage.Store, tokens TokenIssuer, cfg *config.Config) *Handler {
	return &Handler{repo: repo, store: store, tokens: tokens, cfg: cfg}
}

// region --- Errors ---

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// ValidationErrorResponse lists the offending fields.
type ValidationErrorResponse struct {
	Error  string            `json:"error" example:"Validation failed"`
	Fields map[string]string `json:"fields"`
}

func respondFields(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
}

// respondBindError answers a failed ShouldBindJSON.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondFields(c, validation.FieldErrors(err))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondInternal logs the error and hides it from the client.
func respondInternal(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	logging.FromContext(c).Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// endregion

// region --- Helpers ---

func viewerID(c *gin.Context) uint {
	return auth.UserID(c)
}

// pathID parses a positive numeric path parameter. Malformed ids answer 404
// since no such resource can exist.
func pathID(c *gin.Context, name, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return 0, false
	}
	return uint(id), true
}

// endregion
