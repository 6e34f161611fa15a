package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeRelationRepository is a set of (user, recipe) pairs. Favorites and
// the shopping cart both satisfy it.
type RecipeRelationRepository interface {
	// Add inserts the pair and returns ErrDuplicate if it already exists.
	Add(ctx context.Context, userID, recipeID uint) error
	// Remove deletes the pair and returns gorm.ErrRecordNotFound if absent.
	Remove(ctx context.Context, userID, recipeID uint) error
	Exists(ctx context.Context, userID, recipeID uint) (bool, error)
	// RecipeIDsAmong reports which of recipeIDs are in the user's set.
	RecipeIDsAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	CountByRecipe(ctx context.Context, recipeID uint) (int64, error)
}

// userRecipeSet holds the queries shared by every user×recipe join table.
type userRecipeSet struct {
	db    *gorm.DB
	model func() any
}

func (s userRecipeSet) add(ctx context.Context, row any) error {
	return translateError(s.db.WithContext(ctx).Create(row).Error)
}

func (s userRecipeSet) remove(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(s.model())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s userRecipeSet) exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(s.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s userRecipeSet) among(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(s.model()).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (s userRecipeSet) countByRecipe(ctx context.Context, recipeID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(s.model()).Where("recipe_id = ?", recipeID).Count(&count).Error
	return count, err
}

// PostgresFavoriteRepository implements RecipeRelationRepository for favorites
type PostgresFavoriteRepository struct {
	set userRecipeSet
}

// NewPostgresFavoriteRepository creates a new PostgresFavoriteRepository
func NewPostgresFavoriteRepository(db *gorm.DB) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{set: userRecipeSet{db: db, model: func() any { return &models.Favorite{} }}}
}

func (r *PostgresFavoriteRepository) Add(ctx context.Context, userID, recipeID uint) error {
	return r.set.add(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID})
}

func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, recipeID uint) error {
	return r.set.remove(ctx, userID, recipeID)
}

func (r *PostgresFavoriteRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return r.set.exists(ctx, userID, recipeID)
}

func (r *PostgresFavoriteRepository) RecipeIDsAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.set.among(ctx, userID, recipeIDs)
}

func (r *PostgresFavoriteRepository) CountByRecipe(ctx context.Context, recipeID uint) (int64, error) {
	return r.set.countByRecipe(ctx, recipeID)
}
