package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles subscribe/unsubscribe HTTP requests
type FollowHandler struct {
	subscriptions *services.SubscriptionService
	mediaURL      string
	pageSize      int
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(subscriptions *services.SubscriptionService, mediaURL string, pageSize int) *FollowHandler {
	return &FollowHandler{subscriptions: subscriptions, mediaURL: mediaURL, pageSize: pageSize}
}

// RegisterFollowRoutes registers follow-related routes on the users group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/subscriptions", h.Subscriptions, requireAuth)
	g.POST("/:id/subscribe", h.Subscribe, requireAuth)
	g.DELETE("/:id/subscribe", h.Unsubscribe, requireAuth)
}

// recipesLimit reads the optional `recipes_limit`. A missing, unparsable or
// negative value means no limit (-1).
func recipesLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("recipes_limit"))
	if err != nil || limit < 0 {
		return -1
	}
	return limit
}

// Subscribe follows a user
func (h *FollowHandler) Subscribe(c echo.Context) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	author, err := h.subscriptions.Subscribe(c.Request().Context(), middleware.CurrentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newSubscriptionResponse(c, h.mediaURL, author))
}

// Unsubscribe unfollows a user
func (h *FollowHandler) Unsubscribe(c echo.Context) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.subscriptions.Unsubscribe(c.Request().Context(), middleware.CurrentUserID(c), authorID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows
func (h *FollowHandler) Subscriptions(c echo.Context) error {
	page := pageParams(c, h.pageSize)
	authors, total, err := h.subscriptions.Subscriptions(c.Request().Context(), middleware.CurrentUserID(c), page.Offset(), page.Size, recipesLimit(c))
	if err != nil {
		return respondError(c, err)
	}
	results := make([]SubscriptionResponse, len(authors))
	for i := range authors {
		results[i] = newSubscriptionResponse(c, h.mediaURL, &authors[i])
	}
	return paginated(c, page, total, results)
}
