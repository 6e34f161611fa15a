package services

import (
	"context"
	"errors"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/metrics"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/repositories"
)

// RelationService toggles a user's membership of one recipe in a set such
// as favorites or the shopping cart.
type RelationService struct {
	relation string
	label    string
	set      repositories.RecipeRelationRepository
	recipes  repositories.RecipeRepository
}

func NewFavoriteService(set repositories.RecipeRelationRepository, recipes repositories.RecipeRepository) *RelationService {
	return &RelationService{relation: "favorite", label: "favorites", set: set, recipes: recipes}
}

func NewShoppingCartService(set repositories.RecipeRelationRepository, recipes repositories.RecipeRepository) *RelationService {
	return &RelationService{relation: "shopping_cart", label: "the shopping cart", set: set, recipes: recipes}
}

// Add puts the recipe into the user's set and returns it. Adding twice is a
// conflict.
func (s *RelationService) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.set.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("recipe is already in " + s.label)
		}
		return nil, err
	}
	metrics.RelationMutations.WithLabelValues(s.relation, "add").Inc()
	return recipe, nil
}

// Remove takes the recipe out of the user's set. Removing a recipe that is
// not there is a not-found error.
func (s *RelationService) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	if err := s.set.Remove(ctx, userID, recipeID); err != nil {
		if repositories.IsNotFound(err) {
			return apperrors.NotFound("recipe is not in " + s.label)
		}
		return err
	}
	metrics.RelationMutations.WithLabelValues(s.relation, "remove").Inc()
	return nil
}

func (s *RelationService) recipe(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, err
	}
	return recipe, nil
}
