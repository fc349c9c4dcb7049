package handler

import (
	"errors"
	"net/http"

	"foodgram/backend/internal/logging"
	"foodgram/backend/internal/models"
	"foodgram/backend/internal/repository"
	"foodgram/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=254" example:"chef@example.com"`
	Username  string `json:"username" binding:"required,max=150,username" example:"chef"`
	FirstName string `json:"first_name" binding:"required,max=150" example:"Ivan"`
	LastName  string `json:"last_name" binding:"required,max=150" example:"Petrov"`
	Password  string `json:"password" binding:"required,min=8,max=128" example:"password123"`
}

// RegisteredUserResponse is returned right after sign-up.
type RegisteredUserResponse struct {
	Email     string `json:"email" example:"chef@example.com"`
	ID        uint   `json:"id" example:"1"`
	Username  string `json:"username" example:"chef"`
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name" example:"Petrov"`
}

type SetPasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required" example:"password123"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128" example:"newpassword456"`
}

type AvatarInput struct {
	Avatar string `json:"avatar" binding:"required" example:"data:image/png;base64,iVBORw0KGgo..."`
}

type AvatarResponse struct {
	Avatar string `json:"avatar" example:"/media/avatars/0b6c.png"`
}

// endregion

// region --- User Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  RegisteredUserResponse
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	emailTaken, usernameTaken, err := h.repo.TakenCredentials(ctx, input.Email, input.Username)
	if err != nil {
		respondInternal(c, err, "Failed to check credentials")
		return
	}
	if emailTaken || usernameTaken {
		fields := map[string]string{}
		if emailTaken {
			fields["email"] = "A user with this email already exists."
		}
		if usernameTaken {
			fields["username"] = "A user with this username already exists."
		}
		respondFields(c, fields)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondInternal(c, err, "Failed to hash password")
		return
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := h.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already exists"})
			return
		}
		respondInternal(c, err, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, RegisteredUserResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(6)
// @Success      200   {object}  Page[UserResponse]
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	p := h.pageParams(c)

	users, total, err := h.repo.ListUsers(ctx, p.Offset(), p.Limit)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve users")
		return
	}

	results, err := h.userResponses(ctx, viewerID(c), users)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, newPage(c, h.cfg.PublicURL, results, total, p))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "id", "User")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.repo.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondInternal(c, err, "Failed to retrieve user")
		return
	}

	response, err := h.userResponse(ctx, viewerID(c), *user)
	if err != nil {
		respondInternal(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetMe godoc
// @Summary      Get current user's info
// @Tags         users
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

// SetPassword godoc
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Security     TokenAuth
// @Param        input body SetPasswordInput true "Passwords"
// @Success      204
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/set_password [post]
func (h *Handler) SetPassword(c *gin.Context) {
	var input SetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		respondFields(c, map[string]string{"current_password": "Invalid password."})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondInternal(c, err, "Failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), user.ID, string(hashedPassword)); err != nil {
		respondInternal(c, err, "Failed to update password")
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateAvatar godoc
// @Summary      Upload avatar
// @Description  Accepts a base64 data URI; {id} must be the caller or "me".
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id    path  string       true  "User ID or me"
// @Param        input body  AvatarInput  true  "Avatar image"
// @Success      200  {object}  AvatarResponse
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{id}/avatar [put]
func (h *Handler) UpdateAvatar(c *gin.Context) {
	var input AvatarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	img, err := storage.DecodeDataURI(input.Avatar)
	if err != nil {
		respondFields(c, map[string]string{"avatar": err.Error()})
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	url, err := h.store.Save(ctx, "avatars", img)
	if err != nil {
		respondInternal(c, err, "Failed to store avatar")
		return
	}
	if err := h.repo.SetAvatar(ctx, user.ID, url); err != nil {
		h.discardImage(c, url)
		respondInternal(c, err, "Failed to update avatar")
		return
	}
	h.discardImage(c, user.Avatar)

	c.JSON(http.StatusOK, AvatarResponse{Avatar: url})
}

// DeleteAvatar godoc
// @Summary      Remove avatar
// @Tags         users
// @Security     TokenAuth
// @Param        id   path  string  true  "User ID or me"
// @Success      204
// @Failure      400  {object}  ErrorResponse "No avatar set"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{id}/avatar [delete]
func (h *Handler) DeleteAvatar(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.Avatar == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have no avatar"})
		return
	}

	if err := h.repo.SetAvatar(c.Request.Context(), user.ID, ""); err != nil {
		respondInternal(c, err, "Failed to remove avatar")
		return
	}
	h.discardImage(c, user.Avatar)

	c.Status(http.StatusNoContent)
}

// DeleteMe godoc
// @Summary      Delete own account
// @Description  Removes the caller with their recipes, favorites, cart and subscriptions.
// @Tags         users
// @Security     TokenAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [delete]
func (h *Handler) DeleteMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	recipes, err := h.repo.AuthorRecipes(ctx, user.ID, 0)
	if err != nil {
		respondInternal(c, err, "Failed to delete user")
		return
	}
	if err := h.repo.DeleteUser(ctx, user.ID); err != nil {
		respondInternal(c, err, "Failed to delete user")
		return
	}

	h.discardImage(c, user.Avatar)
	for _, r := range recipes {
		h.discardImage(c, r.Image)
	}
	c.Status(http.StatusNoContent)
}

// endregion

// region --- Helpers ---

// currentUser loads the authenticated user. A token whose user is gone is
// treated as invalid.
func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	user, err := h.repo.GetUser(c.Request.Context(), viewerID(c))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	if err != nil {
		respondInternal(c, err, "Failed to load user")
		return nil, false
	}
	return user, true
}

// discardImage removes a stored file; failures are only logged.
func (h *Handler) discardImage(c *gin.Context, url string) {
	if url == "" {
		return
	}
	if err := h.store.Delete(c.Request.Context(), url); err != nil {
		logging.FromContext(c).Warn().Err(err).Str("url", url).Msg("failed to remove image")
	}
}

// endregion
