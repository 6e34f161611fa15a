package repositories

import (
	"context"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tagIDs []uint) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tagIDs []uint) error
	DeleteRecipe(ctx context.Context, id uint) error
	GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
}

// PostgresRecipeRepository implements RecipeRepository for PostgreSQL
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

// CreateRecipe inserts the recipe, its ingredient lines and its tag links in
// one transaction.
func (r *PostgresRecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tagIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		if err := insertLines(tx, recipe.ID, lines); err != nil {
			return err
		}
		return insertTagLinks(tx, recipe.ID, tagIDs)
	})
	return translateError(err)
}

// UpdateRecipe rewrites the recipe's own columns, replaces every ingredient
// line and reconciles the tag set, all in one transaction. The recipe ID and
// publication date never change.
func (r *PostgresRecipeRepository) UpdateRecipe(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tagIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]any{
			"name":         recipe.Name,
			"image":        recipe.Image,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := insertLines(tx, recipe.ID, lines); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return insertTagLinks(tx, recipe.ID, tagIDs)
	})
	return translateError(err)
}

func insertLines(tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(lines))
	for i, l := range lines {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: l.IngredientID, Amount: l.Amount}
	}
	return tx.Omit("Ingredient").Create(&rows).Error
}

func insertTagLinks(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	return tx.Create(&rows).Error
}

// DeleteRecipe removes the recipe and every row that references it. Child
// rows are deleted explicitly so no orphan survives on engines where foreign
// keys are not enforced.
func (r *PostgresRecipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []any{
			&models.Favorite{},
			&models.ShoppingCartEntry{},
			&models.RecipeIngredient{},
			&models.RecipeTag{},
		}
		for _, child := range children {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// GetRecipeByID loads a recipe with its author, tags and ingredient lines.
func (r *PostgresRecipeRepository) GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes matching filter, newest first,
// plus the number of matches. Tag slugs are ORed; every other filter is
// ANDed.
func (r *PostgresRecipeRepository) ListRecipes(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int64, error) {
	db := r.db.WithContext(ctx)
	apply := func(q *gorm.DB) *gorm.DB {
		if len(filter.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", filter.AuthorID)
		}
		if filter.FavoritedBy != 0 {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
		}
		if filter.InShoppingCartOf != 0 {
			q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartEntry{}).
				Select("recipe_id").Where("user_id = ?", filter.InShoppingCartOf))
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&models.Recipe{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := withDetails(apply(db.Model(&models.Recipe{}))).Order("recipes.pub_date DESC, recipes.id DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's recipes, newest first. A limit of zero or
// less returns all of them.
func (r *PostgresRecipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *PostgresRecipeRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// NameTaken reports whether another recipe already uses name.
func (r *PostgresRecipeRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
