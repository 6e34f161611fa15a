package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// ShoppingCartRepository is the user's cart plus the ingredient aggregation
// that feeds the shopping list download.
type ShoppingCartRepository interface {
	RecipeRelationRepository
	AggregateIngredients(ctx context.Context, userID uint) ([]models.ShoppingListItem, error)
}

// PostgresShoppingCartRepository implements ShoppingCartRepository
type PostgresShoppingCartRepository struct {
	db  *gorm.DB
	set userRecipeSet
}

func NewPostgresShoppingCartRepository(db *gorm.DB) *PostgresShoppingCartRepository {
	return &PostgresShoppingCartRepository{
		db:  db,
		set: userRecipeSet{db: db, model: func() any { return &models.ShoppingCartEntry{} }},
	}
}

func (r *PostgresShoppingCartRepository) Add(ctx context.Context, userID, recipeID uint) error {
	return r.set.add(ctx, &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID})
}

func (r *PostgresShoppingCartRepository) Remove(ctx context.Context, userID, recipeID uint) error {
	return r.set.remove(ctx, userID, recipeID)
}

func (r *PostgresShoppingCartRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return r.set.exists(ctx, userID, recipeID)
}

func (r *PostgresShoppingCartRepository) RecipeIDsAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.set.among(ctx, userID, recipeIDs)
}

func (r *PostgresShoppingCartRepository) CountByRecipe(ctx context.Context, recipeID uint) (int64, error) {
	return r.set.countByRecipe(ctx, recipeID)
}

// AggregateIngredients sums ingredient amounts over every recipe in the
// user's cart. Groups are keyed by ingredient row, so one name under two
// measurement units yields two items. Ordered by name, then unit.
func (r *PostgresShoppingCartRepository) AggregateIngredients(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	items := make([]models.ShoppingListItem, 0)
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
