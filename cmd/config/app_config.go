package config

import (
	"context"
	"io"
	"os"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/internal/api/handlers"
	"recipe-share-api/internal/api/presenters"
	"recipe-share-api/internal/api/routes"
	"recipe-share-api/internal/middleware"
	"recipe-share-api/internal/utils"
	"recipe-share-api/internal/utils/mailing"
	"recipe-share-api/internal/utils/storage"
	"recipe-share-api/pkg/auth"
	"recipe-share-api/pkg/bookmark"
	"recipe-share-api/pkg/jwt"
	"recipe-share-api/pkg/recipe"
	"recipe-share-api/pkg/search"
	"recipe-share-api/pkg/user"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the app is assembled from. Tests swap
// the external ones (storage, Google, mail) for fakes.
type Dependencies struct {
	DB        *gorm.DB
	Storage   storage.Storage
	Google    auth.GoogleVerifier
	Mailer    mailing.Mailer
	JWTSecret string
	AppName   string
	TokenTTL  time.Duration
	// RateLimit is requests per second per IP; 0 disables the limiter.
	RateLimit int
	AccessLog io.Writer
}

// NewApp wires the app from the loaded configuration.
func NewApp(db *gorm.DB) (*fiber.App, error) {
	secret := utils.GetConfig("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	s3, err := storage.NewAwsS3(context.Background(), storage.Config{
		URL:          utils.GetConfig("STORAGE_URL"),
		Region:       utils.GetConfig("STORAGE_REGION"),
		AccessKey:    utils.GetConfig("STORAGE_ACCESS_KEY"),
		SecretKey:    utils.GetConfig("STORAGE_SECRET_KEY"),
		RecipeBucket: utils.GetConfig("STORAGE_BUCKET_RECIPES"),
		AvatarBucket: utils.GetConfig("STORAGE_BUCKET_AVATARS"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "init object storage")
	}

	// setting up access log
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create logs directory")
	}
	file, err := os.OpenFile("./logs/app.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "open access log")
	}

	return Build(Dependencies{
		DB:      db,
		Storage: s3,
		Google: auth.NewGoogleVerifier(auth.GoogleConfig{
			Audiences: utils.GetConfigList("GOOGLE_CLIENT_ID", "GOOGLE_ANDROID_CLIENT_ID", "GOOGLE_IOS_CLIENT_ID"),
		}),
		Mailer:    mailing.NewMailer(mailing.LoadMailConfig()),
		JWTSecret: secret,
		AppName:   utils.GetConfig("APP_NAME"),
		TokenTTL:  time.Duration(utils.GetConfigInt("TOKEN_TTL_MINUTES", 1440)) * time.Minute,
		RateLimit: utils.GetConfigInt("RATE_LIMIT_PER_SECOND", 20),
		AccessLog: io.MultiWriter(os.Stdout, file),
	}), nil
}

func Build(deps Dependencies) *fiber.App {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// request id and metrics come first so limiter rejections carry an id
	// and are counted
	app.Use(recover.New())
	app.Use(middlewares.RequestID())
	app.Use(middlewares.CORSMiddleware())
	app.Use(middlewares.Metrics())
	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			Output:     deps.AccessLog,
		}))
	}
	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Second,
			LimitReached: func(c *fiber.Ctx) error {
				return presenters.ErrorResponse(c, fiber.StatusTooManyRequests, domain.MessageTooManyRequests, nil)
			},
		}))
	}

	// Repository
	userRepository := user.NewUserRepository(deps.DB)
	tokenRepository := auth.NewTokenRepository(deps.DB)
	recipeRepository := recipe.NewRecipeRepository(deps.DB)
	bookmarkRepository := bookmark.NewBookmarkRepository(deps.DB)
	searchRepository := search.NewSearchRepository(deps.DB)

	// Service
	jwtService := jwt.NewJWTService(deps.JWTSecret)
	authService := auth.NewAuthService(
		userRepository,
		tokenRepository,
		jwtService,
		deps.Google,
		deps.Storage,
		deps.Mailer,
		deps.TokenTTL,
	)
	userService := user.NewUserService(userRepository, deps.Storage)
	recipeService := recipe.NewRecipeService(recipeRepository, deps.Storage)
	bookmarkService := bookmark.NewBookmarkService(bookmarkRepository, recipeRepository, deps.Storage)
	searchService := search.NewSearchService(searchRepository, recipeRepository, deps.Storage)

	// Handler
	authHandler := handlers.NewAuthHandler(authService, validator)
	userHandler := handlers.NewUserHandler(userService, validator)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService)
	searchHandler := handlers.NewSearchHandler(searchService, validator)
	healthHandler := handlers.NewHealthHandler(deps.AppName)

	// routes
	routesConfig := routes.Config{
		App:             app,
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		RecipeHandler:   recipeHandler,
		BookmarkHandler: bookmarkHandler,
		SearchHandler:   searchHandler,
		HealthHandler:   healthHandler,
		Middleware:      middlewares,
		AuthService:     authService,
	}
	routesConfig.Setup()
	return app
}
