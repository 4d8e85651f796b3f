package routes

import (
	"recipe-share-api/internal/api/handlers"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App             *fiber.App
	AuthHandler     handlers.AuthHandler
	UserHandler     handlers.UserHandler
	RecipeHandler   handlers.RecipeHandler
	BookmarkHandler handlers.BookmarkHandler
	SearchHandler   handlers.SearchHandler
	HealthHandler   handlers.HealthHandler
	Middleware      middleware.Middleware
	AuthService     auth.AuthService
}

// Setup registers the routes. Global middleware is applied by the caller
// before the access log and rate limiter.
func (c *Config) Setup() {
	c.GuestRoute()

	api := c.App.Group("/api/v1")
	c.Auth(api)
	c.Recipes(api)
	c.Bookmarks(api)
	c.Users(api)
	c.Search(api)
}

func (c *Config) authed() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.AuthService)
}

func (c *Config) optional() fiber.Handler {
	return c.Middleware.OptionalAuth(c.AuthService)
}

func (c *Config) GuestRoute() {
	c.App.Get("/health", c.HealthHandler.Health)
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) Auth(api fiber.Router) {
	auth := api.Group("/auth")
	{
		auth.Post("/register", c.AuthHandler.Register)
		auth.Post("/login", c.AuthHandler.Login)
		auth.Post("/google", c.AuthHandler.GoogleLogin)
		auth.Post("/logout", c.authed(), c.AuthHandler.Logout)
		auth.Post("/logout-all", c.authed(), c.AuthHandler.LogoutAll)
		auth.Post("/refresh", c.authed(), c.AuthHandler.Refresh)
		auth.Get("/check", c.authed(), c.AuthHandler.Check)
		auth.Get("/me", c.authed(), c.AuthHandler.Me)
	}
}

func (c *Config) Recipes(api fiber.Router) {
	recipes := api.Group("/recipes")

	// guests see the feed with every viewer flag false
	recipes.Get("/timeline", c.optional(), c.RecipeHandler.GetTimeline)
	recipes.Get("/recommendations", c.optional(), c.RecipeHandler.GetRecommendations)
	recipes.Get("/:id", c.optional(), c.RecipeHandler.GetRecipeDetail)

	recipes.Post("", c.authed(), c.RecipeHandler.CreateRecipe)
	recipes.Put("/:id", c.authed(), c.RecipeHandler.UpdateRecipe)
	recipes.Post("/:id/update", c.authed(), c.RecipeHandler.UpdateRecipe)
	recipes.Delete("/:id", c.authed(), c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/like", c.authed(), c.RecipeHandler.LikeRecipe)
	recipes.Delete("/:id/like", c.authed(), c.RecipeHandler.UnlikeRecipe)
}

func (c *Config) Bookmarks(api fiber.Router) {
	bookmarks := api.Group("/bookmarks", c.authed())
	bookmarks.Get("", c.BookmarkHandler.GetBookmarks)
	bookmarks.Post("/:id", c.BookmarkHandler.AddBookmark)
	bookmarks.Delete("/:id", c.BookmarkHandler.RemoveBookmark)
	bookmarks.Get("/:id/check", c.BookmarkHandler.CheckBookmark)
}

func (c *Config) Users(api fiber.Router) {
	profile := api.Group("/user", c.authed())
	profile.Get("/profile", c.UserHandler.GetProfile)
	profile.Put("/profile", c.UserHandler.UpdateProfile)
	profile.Post("/profile", c.UserHandler.UpdateProfile)
	profile.Put("/language", c.UserHandler.UpdateLanguage)
	profile.Put("/email", c.UserHandler.ChangeEmail)
	profile.Delete("/account", c.UserHandler.DeleteAccount)

	users := api.Group("/users")
	users.Get("/:username", c.optional(), c.UserHandler.GetUser)
	users.Get("/:username/recipes", c.optional(), c.UserHandler.GetUserRecipes)
	users.Post("/:username/follow", c.authed(), c.UserHandler.Follow)
	users.Delete("/:username/follow", c.authed(), c.UserHandler.Unfollow)
}

func (c *Config) Search(api fiber.Router) {
	search := api.Group("/search")
	search.Get("/recipes", c.optional(), c.SearchHandler.SearchRecipes)
	search.Post("/ingredients", c.optional(), c.SearchHandler.SearchByIngredients)
	search.Get("/suggestions", c.SearchHandler.GetSuggestions)

	history := search.Group("/history", c.authed())
	history.Get("", c.SearchHandler.GetHistory)
	history.Delete("", c.SearchHandler.ClearHistory)
	history.Delete("/:keyword", c.SearchHandler.DeleteHistoryKeyword)
}
