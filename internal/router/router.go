package router

import (
	"time"

	"github.com/anonto42/foodgram/backend/internal/handlers"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/anonto42/foodgram/backend/pkg/config"
	"github.com/anonto42/foodgram/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the resources the routes are built from.
type Dependencies struct {
	DB       *gorm.DB
	Images   storage.ImageStore
	Firebase handlers.TokenVerifier // nil disables Firebase sign-in

	JWTSecret     string
	TokenTTL      time.Duration
	AuthRateLimit int // requests per minute per IP on login and sign-up, 0 disables
	MediaURL      string
	PageSize      int
	PDFFontPath   string
}

// New builds a ready-to-serve Echo instance.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	if deps.PageSize < 1 {
		deps.PageSize = 6
	}
	if deps.MediaURL == "" {
		deps.MediaURL = "/media/"
	}

	// Health check - always accessible
	var pinger handlers.Pinger
	if sqlDB, err := deps.DB.DB(); err == nil {
		pinger = sqlDB
	}
	e.GET("/health", handlers.NewHealthHandler(pinger).HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	catalogRepo := repositories.NewPostgresCatalogRepository(deps.DB)
	recipeRepo := repositories.NewPostgresRecipeRepository(deps.DB)
	favoriteRepo := repositories.NewPostgresFavoriteRepository(deps.DB)
	cartRepo := repositories.NewPostgresShoppingCartRepository(deps.DB)

	// --- Services ---
	recipeService := services.NewRecipeService(recipeRepo, catalogRepo, catalogRepo, favoriteRepo, cartRepo, followRepo, deps.Images)
	subscriptionService := services.NewSubscriptionService(userRepo, followRepo, recipeRepo)
	shoppingList := services.NewShoppingListService(cartRepo, deps.PDFFontPath)

	jwtConfig := middleware.JWTConfig{Secret: deps.JWTSecret, Users: userRepo}
	requireAuth := middleware.JWTAuthMiddleware(jwtConfig)
	throttle := middleware.ThrottleByIP(deps.AuthRateLimit)

	// Every API route identifies the caller when a token is sent; routes
	// that need one add requireAuth.
	api := e.Group("/api", middleware.OptionalJWTAuthMiddleware(jwtConfig))

	authHandler := handlers.NewAuthHandler(userRepo, deps.Firebase, deps.JWTSecret, deps.TokenTTL)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), requireAuth, throttle)

	users := api.Group("/users")
	followHandler := handlers.NewFollowHandler(subscriptionService, deps.MediaURL, deps.PageSize)
	followHandler.RegisterFollowRoutes(users, requireAuth)
	userHandler := handlers.NewUserHandler(userRepo, followRepo, deps.PageSize)
	userHandler.RegisterUserRoutes(users, requireAuth, throttle)

	catalogHandler := handlers.NewCatalogHandler(catalogRepo, catalogRepo)
	catalogHandler.RegisterCatalogRoutes(api)

	recipes := api.Group("/recipes")
	recipeHandler := handlers.NewRecipeHandler(recipeService, shoppingList, deps.MediaURL, deps.PageSize)
	recipeHandler.RegisterRecipeRoutes(recipes, requireAuth)
	handlers.NewRelationHandler(services.NewFavoriteService(favoriteRepo, recipeRepo), deps.MediaURL).
		RegisterRelationRoutes(recipes, "favorite", requireAuth)
	handlers.NewRelationHandler(services.NewShoppingCartService(cartRepo, recipeRepo), deps.MediaURL).
		RegisterRelationRoutes(recipes, "shopping_cart", requireAuth)

	mediaHandler := handlers.NewMediaHandler(deps.Images)
	e.GET(mediaRoute(deps.MediaURL), mediaHandler.ServeImage)

	logging.Debug().Bool("firebase", deps.Firebase != nil).Msg("routes configured")
}

// mediaRoute turns the public media prefix into an Echo wildcard route. An
// absolute prefix points at an external host, so images are served under
// /media/ locally.
func mediaRoute(prefix string) string {
	if len(prefix) == 0 || prefix[0] != '/' {
		prefix = "/media/"
	}
	if prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return prefix + "*"
}
