package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	pageSize         int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository, pageSize int) *UserHandler {
	return &UserHandler{userRepository: userRepo, followRepository: followRepo, pageSize: pageSize}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth, throttle echo.MiddlewareFunc) {
	g.POST("", h.Register, throttle)
	g.GET("", h.ListUsers)
	g.GET("/me", h.Me, requireAuth)
	g.POST("/set_password", h.SetPassword, requireAuth)
	g.GET("/:id", h.GetUser)
}

// Register creates a local account
func (h *UserHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	details := map[string]string{}
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		details["email"] = "a user with this email already exists"
	} else if !repositories.IsNotFound(err) {
		return respondError(c, err)
	}
	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		details["username"] = "a user with this username already exists"
	} else if !repositories.IsNotFound(err) {
		return respondError(c, err)
	}
	if len(details) > 0 {
		return respondError(c, apperrors.ValidationWithDetails("invalid request payload", details))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return respondError(c, apperrors.Validation("a user with this email or username already exists"))
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, CreatedUserResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers returns a page of users with the caller's subscription flags
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	page := pageParams(c, h.pageSize)

	users, total, err := h.userRepository.ListUsers(ctx, page.Offset(), page.Size)
	if err != nil {
		return respondError(c, err)
	}

	followed := map[uint]bool{}
	if viewerID := middleware.CurrentUserID(c); viewerID != 0 && len(users) > 0 {
		ids := make([]uint, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		if followed, err = h.followRepository.FollowedAuthorIDs(ctx, viewerID, ids); err != nil {
			return respondError(c, err)
		}
	}

	results := make([]UserResponse, len(users))
	for i := range users {
		results[i] = newUserResponse(&users[i], followed[users[i].ID])
	}
	return paginated(c, page, total, results)
}

// GetUser returns another user's profile
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return respondError(c, err)
	}

	subscribed := false
	if viewerID := middleware.CurrentUserID(c); viewerID != 0 {
		if subscribed, err = h.followRepository.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(http.StatusOK, newUserResponse(user, subscribed))
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, newUserResponse(middleware.CurrentUser(c), false))
}

// SetPassword changes the caller's password after checking the current one
func (h *UserHandler) SetPassword(c echo.Context) error {
	var req models.SetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return respondError(c, apperrors.ValidationWithDetails("invalid request payload", map[string]string{
			"current_password": "invalid password",
		}))
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user.Password = string(hashedPassword)
	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
