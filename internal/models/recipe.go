package models

import "time"

type Recipe struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	AuthorID    uint               `json:"author_id" gorm:"not null;index"`
	Author      User               `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Image       string             `json:"image" gorm:"not null"` // storage key, not a URL
	Text        string             `json:"text" gorm:"type:text;not null"`
	CookingTime int                `json:"cooking_time" gorm:"not null;check:chk_recipe_cooking_time,cooking_time > 0"`
	Tags        []Tag              `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"ingredients" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	PubDate     time.Time          `json:"pub_date" gorm:"not null;index;autoCreateTime"`
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	ID           uint       `json:"-" gorm:"primaryKey"`
	RecipeID     uint       `json:"-" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `json:"id" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   Ingredient `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `json:"amount" gorm:"not null;check:chk_recipe_ingredient_amount,amount > 0"`
}

// RecipeTag is the join row behind Recipe.Tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount"`
}

// RecipeWriteRequest is the body of recipe create and update calls.
// Domain rules (positive cooking time, unique ingredients) are checked by
// the recipe service, not by struct tags.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,dive"`
	Tags        []uint             `json:"tags" validate:"required"`
	Image       string             `json:"image"`
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time"`
}

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	TagSlugs         []string
	AuthorID         uint
	FavoritedBy      uint
	InShoppingCartOf uint
	Offset           int
	Limit            int
}
