package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	userContextKey   = "user"
	claimsContextKey = "claims"
)

var errNoCredentials = errors.New("no credentials")

// JWTConfig configures the token middlewares.
type JWTConfig struct {
	Secret string
	Users  repositories.UserRepository
}

// JWTAuthMiddleware requires a valid token and stores the caller in the
// context.
func JWTAuthMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, claims, err := authenticate(c, cfg)
			if err != nil {
				if errors.Is(err, errNoCredentials) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided")
				}
				return err
			}
			c.Set(userContextKey, user)
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuthMiddleware lets anonymous requests through but still
// rejects a malformed or revoked token.
func OptionalJWTAuthMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, claims, err := authenticate(c, cfg)
			if err != nil {
				if errors.Is(err, errNoCredentials) {
					return next(c)
				}
				return err
			}
			c.Set(userContextKey, user)
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

func authenticate(c echo.Context, cfg JWTConfig) (*models.User, *models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil, errNoCredentials
	}

	// Expecting "Bearer <token>"; "Token <token>" is accepted as well.
	parts := strings.Fields(authHeader)
	if len(parts) != 2 {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "bearer" && scheme != "token" {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}

	claims, err := ParseToken(parts[1], cfg.Secret)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := cfg.Users.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		logging.Error().Err(err).Uint("user_id", claims.UserID).Msg("failed to load token owner")
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
	}
	return user, claims, nil
}

// ParseToken validates an HS256 token signed with secret.
func ParseToken(tokenString, secret string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// CurrentUser returns the authenticated caller, or nil for anonymous
// requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// CurrentUserID returns the caller's ID, zero for anonymous requests.
func CurrentUserID(c echo.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}
