package handlers

import (
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the read-only tag and ingredient lists
type CatalogHandler struct {
	tagRepository        repositories.TagRepository
	ingredientRepository repositories.IngredientRepository
}

func NewCatalogHandler(tagRepo repositories.TagRepository, ingredientRepo repositories.IngredientRepository) *CatalogHandler {
	return &CatalogHandler{tagRepository: tagRepo, ingredientRepository: ingredientRepo}
}

func (h *CatalogHandler) RegisterCatalogRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.GET("/tags/:id", h.GetTag)
	g.GET("/ingredients", h.ListIngredients)
	g.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.tagRepository.ListTags(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tag, err := h.tagRepository.GetTagByID(c.Request().Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Tag not found")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

// ListIngredients supports `?name=` as a case-insensitive prefix search
func (h *CatalogHandler) ListIngredients(c echo.Context) error {
	ingredients, err := h.ingredientRepository.ListIngredients(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ingredient, err := h.ingredientRepository.GetIngredientByID(c.Request().Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Ingredient not found")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}
