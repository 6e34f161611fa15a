package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/anonto42/foodgram/backend/validators"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   TokenVerifier
	jwtSecret      string
	tokenTTL       time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in
// which case Firebase sign-in is not offered.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth TokenVerifier, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes. throttle
// guards the credential endpoints.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth, throttle echo.MiddlewareFunc) {
	g.POST("/token/login", h.Login, throttle)
	g.POST("/token/logout", h.Logout, requireAuth)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin, throttle)
	}
}

// Login exchanges email and password for an auth token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	invalid := apperrors.Validation("Unable to log in with provided credentials.")
	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return respondError(c, invalid)
		}
		return respondError(c, err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return respondError(c, invalid)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"auth_token": token})
}

// Logout revokes every token issued to the caller so far
func (h *AuthHandler) Logout(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if err := h.userRepository.IncrementTokenVersion(c.Request().Context(), user.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local token. The
// Firebase identity is matched by UID, then by email, and a new account is
// created when neither exists. Linking by email requires the token to carry
// email_verified; otherwise the request is refused with 409.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return respondError(c, apperrors.Validation("Firebase account has no email address"))
	}
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
	case repositories.IsNotFound(err):
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Existing local account, link it only if Firebase vouches for
			// the address.
			if verified, _ := token.Claims["email_verified"].(bool); !verified {
				logging.Warn().Uint("user_id", user.ID).Msg("refused Firebase link with unverified email")
				return respondError(c, apperrors.Conflict("A user with that email already exists. Verify the email address in Firebase to link it."))
			}
			uid := token.UID
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return respondError(c, err)
			}
		case repositories.IsNotFound(err):
			user, err = h.createFirebaseUser(ctx, token.UID, email, name)
			if err != nil {
				return respondError(c, err)
			}
		default:
			return respondError(c, err)
		}
	default:
		return respondError(c, err)
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}
	return c.JSON(http.StatusOK, echo.Map{"auth_token": localJWT})
}

var usernameDisallowed = regexp.MustCompile(`[^\w.@+-]`)

func (h *AuthHandler) createFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	base := usernameDisallowed.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if base == "" || !validators.ValidUsername(base) {
		base = "user"
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")

	for i := 0; i < 20; i++ {
		username := base
		if i > 0 {
			username = fmt.Sprintf("%s%d", base, i)
		}
		user := &models.User{
			Email:       email,
			Username:    username,
			FirstName:   first,
			LastName:    strings.TrimSpace(last),
			FirebaseUID: &uid,
		}
		err := h.userRepository.CreateUser(ctx, user)
		if err == nil {
			logging.Info().Uint("user_id", user.ID).Msg("user created from Firebase sign-in")
			return user, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, apperrors.Conflict("could not allocate a username for this account")
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
