// Package server assembles the gin engine from a table of routes and their
// access policies.
package server

import (
	"net/http"

	"foodgram/backend/internal/auth"
	"foodgram/backend/internal/config"
	"foodgram/backend/internal/handler"
	"foodgram/backend/internal/logging"
	"foodgram/backend/internal/metrics"
	"foodgram/backend/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Policy decides how a route treats the Authorization header.
type Policy int

const (
	// Public routes never look at the token.
	Public Policy = iota
	// Optional routes identify the caller when a valid token is sent.
	Optional
	// Authenticated routes reject requests without a valid token.
	Authenticated
)

// Route binds a method and path under /api to a handler and a policy.
type Route struct {
	Method  string
	Path    string
	Policy  Policy
	Handler gin.HandlerFunc
	// Extra runs after the policy middleware.
	Extra []gin.HandlerFunc
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Config  *config.Config
	Handler *handler.Handler
	Tokens  auth.TokenParser
	Users   auth.UserLookup
	Logger  zerolog.Logger
}

// Routes is the API route table.
func Routes(h *handler.Handler) []Route {
	self := []gin.HandlerFunc{auth.SelfMiddleware("id")}

	return []Route{
		// Auth
		{http.MethodPost, "/auth/token/login", Public, h.Login, nil},
		{http.MethodPost, "/auth/token/logout", Authenticated, h.Logout, nil},

		// Users; static segments are registered next to /users/:id.
		{http.MethodGet, "/users", Optional, h.ListUsers, nil},
		{http.MethodPost, "/users", Public, h.RegisterUser, nil},
		{http.MethodGet, "/users/me", Authenticated, h.GetMe, nil},
		{http.MethodDelete, "/users/me", Authenticated, h.DeleteMe, nil},
		{http.MethodPut, "/users/me/avatar", Authenticated, h.UpdateAvatar, self},
		{http.MethodDelete, "/users/me/avatar", Authenticated, h.DeleteAvatar, self},
		{http.MethodPost, "/users/set_password", Authenticated, h.SetPassword, nil},
		{http.MethodGet, "/users/subscriptions", Authenticated, h.ListSubscriptions, nil},
		{http.MethodGet, "/users/:id", Optional, h.GetUserByID, nil},
		{http.MethodPut, "/users/:id/avatar", Authenticated, h.UpdateAvatar, self},
		{http.MethodDelete, "/users/:id/avatar", Authenticated, h.DeleteAvatar, self},
		{http.MethodPost, "/users/:id/subscribe", Authenticated, h.Subscribe, nil},
		{http.MethodDelete, "/users/:id/subscribe", Authenticated, h.Unsubscribe, nil},

		// Reference data
		{http.MethodGet, "/tags", Public, h.GetTags, nil},
		{http.MethodGet, "/tags/:id", Public, h.GetTag, nil},
		{http.MethodGet, "/ingredients", Public, h.ListIngredients, nil},
		{http.MethodGet, "/ingredients/:id", Public, h.GetIngredient, nil},

		// Recipes
		{http.MethodGet, "/recipes", Optional, h.ListRecipes, nil},
		{http.MethodPost, "/recipes", Authenticated, h.CreateRecipe, nil},
		{http.MethodGet, "/recipes/download_shopping_cart", Authenticated, h.DownloadShoppingCart, nil},
		{http.MethodGet, "/recipes/:id", Optional, h.GetRecipe, nil},
		{http.MethodPatch, "/recipes/:id", Authenticated, h.UpdateRecipe, nil},
		{http.MethodDelete, "/recipes/:id", Authenticated, h.DeleteRecipe, nil},
		{http.MethodGet, "/recipes/:id/get-link", Public, h.GetShortLink, nil},
		{http.MethodPost, "/recipes/:id/favorite", Authenticated, h.AddFavorite, nil},
		{http.MethodDelete, "/recipes/:id/favorite", Authenticated, h.RemoveFavorite, nil},
		{http.MethodPost, "/recipes/:id/shopping_cart", Authenticated, h.AddToShoppingCart, nil},
		{http.MethodDelete, "/recipes/:id/shopping_cart", Authenticated, h.RemoveFromShoppingCart, nil},
	}
}

// NewRouter builds the engine with middleware, the API table and the
// auxiliary endpoints.
func NewRouter(deps Deps) *gin.Engine {
	validation.Register()

	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(deps.Logger), metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config)))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", metrics.Handler())
	router.GET("/s/:token", deps.Handler.RedirectShortLink)

	if deps.Config.StorageBackend == "local" {
		router.Static(deps.Config.MediaURL, deps.Config.MediaRoot)
	}

	policies := map[Policy][]gin.HandlerFunc{
		Public:        nil,
		Optional:      {auth.OptionalAuthMiddleware(deps.Tokens, deps.Users)},
		Authenticated: {auth.AuthMiddleware(deps.Tokens, deps.Users)},
	}

	api := router.Group("/api")
	for _, r := range Routes(deps.Handler) {
		chain := append([]gin.HandlerFunc{}, policies[r.Policy]...)
		chain = append(chain, r.Extra...)
		chain = append(chain, r.Handler)
		api.Handle(r.Method, r.Path, chain...)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", logging.RequestIDHeader)
	c.ExposeHeaders = []string{"Content-Disposition", logging.RequestIDHeader}

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
