package handler

import (
	"errors"
	"net/http"

	"foodgram/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email" example:"chef@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	AuthToken string `json:"auth_token" example:"eyJhbGciOiJIUzI1NiIs..."`
}

const invalidCredentials = "Unable to log in with provided credentials."

// Login godoc
// @Summary      Obtain an auth token
// @Description  Authenticates a user by email and password and returns a token for the Authorization header.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/token/login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), input.Email)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidCredentials})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to load user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidCredentials})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		respondInternal(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AuthToken: token})
}

// Logout godoc
// @Summary      Log out
// @Description  Tokens are stateless; the client discards its copy.
// @Tags         auth
// @Security     TokenAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/token/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
