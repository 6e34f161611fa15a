package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table of the schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Recipe{}, "Tags", &RecipeTag{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCartEntry{},
	)
}
