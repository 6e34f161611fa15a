// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh in-memory SQLite database with the full schema
// migrated. The pool is pinned to one connection so every query sees the
// same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user named after username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateTag inserts a tag; slug doubles as name.
func CreateTag(t testing.TB, db *gorm.DB, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: slug, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("create tag %s: %v", slug, err)
	}
	return tag
}

func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing
}

// CreateRecipe inserts a recipe with lines and tags directly, bypassing
// services. amounts maps ingredient id to amount.
func CreateRecipe(t testing.TB, db *gorm.DB, author *models.User, name string, amounts map[uint]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("recipes/images/%s.png", name),
		Text:        "text of " + name,
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(r).Error; err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	for ingID, amount := range amounts {
		line := &models.RecipeIngredient{RecipeID: r.ID, IngredientID: ingID, Amount: amount}
		if err := db.Omit("Ingredient").Create(line).Error; err != nil {
			t.Fatalf("create line: %v", err)
		}
	}
	for _, tag := range tags {
		if err := db.Create(&models.RecipeTag{RecipeID: r.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("tag recipe: %v", err)
		}
	}
	return r
}
