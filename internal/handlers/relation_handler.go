package handlers

import (
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RelationHandler exposes add/remove of a recipe in one of the caller's
// recipe sets (favorites or the shopping cart).
type RelationHandler struct {
	relation *services.RelationService
	mediaURL string
}

func NewRelationHandler(relation *services.RelationService, mediaURL string) *RelationHandler {
	return &RelationHandler{relation: relation, mediaURL: mediaURL}
}

// RegisterRelationRoutes registers POST and DELETE on /:id/<action>
func (h *RelationHandler) RegisterRelationRoutes(g *echo.Group, action string, requireAuth echo.MiddlewareFunc) {
	g.POST("/:id/"+action, h.Add, requireAuth)
	g.DELETE("/:id/"+action, h.Remove, requireAuth)
}

func (h *RelationHandler) Add(c echo.Context) error {
	recipeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.relation.Add(c.Request().Context(), middleware.CurrentUserID(c), recipeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newShortRecipeResponse(c, h.mediaURL, recipe))
}

func (h *RelationHandler) Remove(c echo.Context) error {
	recipeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.relation.Remove(c.Request().Context(), middleware.CurrentUserID(c), recipeID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
