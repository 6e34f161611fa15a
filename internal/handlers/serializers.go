package handlers

import (
	"strings"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserResponse is the public profile of a user.
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// CreatedUserResponse is returned by registration.
type CreatedUserResponse struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the read representation of a recipe.
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is used inside subscriptions and by the favorite and
// cart actions.
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newUserResponse(u *models.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// mediaURL resolves a storage key to an absolute URL under mediaPrefix.
func mediaURL(c echo.Context, mediaPrefix, key string) string {
	if key == "" {
		return ""
	}
	path := strings.TrimSuffix(mediaPrefix, "/") + "/" + key
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.Scheme() + "://" + c.Request().Host + path
}

func newRecipeResponse(c echo.Context, mediaPrefix string, d *services.RecipeDetail) RecipeResponse {
	tags := d.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	ingredients := make([]RecipeIngredientResponse, len(d.Ingredients))
	for i, line := range d.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}
	return RecipeResponse{
		ID:               d.ID,
		Tags:             tags,
		Author:           newUserResponse(&d.Author, d.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            mediaURL(c, mediaPrefix, d.Image),
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
}

func newShortRecipeResponse(c echo.Context, mediaPrefix string, r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       mediaURL(c, mediaPrefix, r.Image),
		CookingTime: r.CookingTime,
	}
}

func newSubscriptionResponse(c echo.Context, mediaPrefix string, a *services.AuthorDetail) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, len(a.Recipes))
	for i := range a.Recipes {
		recipes[i] = newShortRecipeResponse(c, mediaPrefix, &a.Recipes[i])
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(&a.User, a.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}
