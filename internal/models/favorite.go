package models

import "time"

// Favorite marks a recipe as liked by a user.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Recipe    *Recipe   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
