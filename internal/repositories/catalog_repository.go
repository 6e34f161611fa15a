package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagByID(ctx context.Context, id uint) (*models.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	// CreateTagIfMissing inserts the tag unless one already holds its slug,
	// name or color.
	CreateTagIfMissing(ctx context.Context, tag *models.Tag) (bool, error)
}

// IngredientRepository defines the interface for ingredient data operations
type IngredientRepository interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredientByID(ctx context.Context, id uint) (*models.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	// CreateIngredientIfMissing inserts the ingredient unless the same
	// (name, measurement unit) pair exists.
	CreateIngredientIfMissing(ctx context.Context, ingredient *models.Ingredient) (bool, error)
}

// CatalogStore is the catalog as seen by bulk loaders.
type CatalogStore interface {
	TagRepository
	IngredientRepository
	// InTransaction runs fn against a store bound to one transaction, which
	// is rolled back when fn returns an error.
	InTransaction(ctx context.Context, fn func(CatalogStore) error) error
}

// PostgresCatalogRepository implements TagRepository, IngredientRepository
// and CatalogStore
type PostgresCatalogRepository struct {
	db *gorm.DB
}

func NewPostgresCatalogRepository(db *gorm.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) InTransaction(ctx context.Context, fn func(CatalogStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresCatalogRepository{db: tx})
	})
}

func (r *PostgresCatalogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresCatalogRepository) GetTagByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *PostgresCatalogRepository) GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresCatalogRepository) CreateTagIfMissing(ctx context.Context, tag *models.Tag) (bool, error) {
	db := r.db.WithContext(ctx)
	var existing models.Tag
	err := db.Where("slug = ? OR name = ? OR color = ?", tag.Slug, tag.Name, tag.Color).Order("id").First(&existing).Error
	if err == nil {
		*tag = existing
		return false, nil
	}
	if !IsNotFound(err) {
		return false, err
	}
	if err := db.Create(tag).Error; err != nil {
		return false, translateError(err)
	}
	return true, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// case-insensitively. An empty prefix lists everything.
func (r *PostgresCatalogRepository) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&models.Ingredient{})
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(namePrefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Order("name, id").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *PostgresCatalogRepository) GetIngredientByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *PostgresCatalogRepository) GetIngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *PostgresCatalogRepository) CreateIngredientIfMissing(ctx context.Context, ingredient *models.Ingredient) (bool, error) {
	db := r.db.WithContext(ctx)
	var existing models.Ingredient
	err := db.Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).First(&existing).Error
	if err == nil {
		*ingredient = existing
		return false, nil
	}
	if !IsNotFound(err) {
		return false, err
	}
	if err := db.Create(ingredient).Error; err != nil {
		return false, translateError(err)
	}
	return true, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
