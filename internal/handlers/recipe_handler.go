package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RecipeHandler handles recipe HTTP requests
type RecipeHandler struct {
	recipes      *services.RecipeService
	shoppingList *services.ShoppingListService
	mediaURL     string
	pageSize     int
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipes *services.RecipeService, shoppingList *services.ShoppingListService, mediaURL string, pageSize int) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, shoppingList: shoppingList, mediaURL: mediaURL, pageSize: pageSize}
}

// RegisterRecipeRoutes registers recipe routes on the recipes group
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("", h.ListRecipes)
	g.POST("", h.CreateRecipe, requireAuth)
	g.GET("/download_shopping_cart", h.DownloadShoppingCart, requireAuth)
	g.GET("/:id", h.GetRecipe)
	g.PATCH("/:id", h.UpdateRecipe, requireAuth)
	g.DELETE("/:id", h.DeleteRecipe, requireAuth)
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// ListRecipes returns a page of recipes, newest first. Supported filters:
// tags (repeatable slug), author, is_favorited, is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	page := pageParams(c, h.pageSize)
	viewerID := middleware.CurrentUserID(c)

	filter := models.RecipeFilter{
		TagSlugs: c.QueryParams()["tags"],
		Offset:   page.Offset(),
		Limit:    page.Size,
	}
	if author := c.QueryParam("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
				"message": "invalid filter",
				"details": map[string]string{"author": "must be a user id"},
			})
		}
		filter.AuthorID = uint(id)
	}
	if truthy(c.QueryParam("is_favorited")) {
		filter.FavoritedBy = viewerID
	}
	if truthy(c.QueryParam("is_in_shopping_cart")) {
		filter.InShoppingCartOf = viewerID
	}

	recipes, total, err := h.recipes.List(c.Request().Context(), viewerID, filter)
	if err != nil {
		return respondError(c, err)
	}
	results := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		results[i] = newRecipeResponse(c, h.mediaURL, &recipes[i])
	}
	return paginated(c, page, total, results)
}

func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newRecipeResponse(c, h.mediaURL, recipe))
}

func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var req models.RecipeWriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Create(c.Request().Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newRecipeResponse(c, h.mediaURL, recipe))
}

// UpdateRecipe replaces the recipe; only the image may be omitted
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.RecipeWriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Update(c.Request().Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newRecipeResponse(c, h.mediaURL, recipe))
}

func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipes.Delete(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as an attachment
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	doc, err := h.shoppingList.Render(c.Request().Context(), middleware.CurrentUserID(c), c.QueryParam("format"))
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}
