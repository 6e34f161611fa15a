package models

import "time"

// ShoppingCartEntry puts a recipe into a user's shopping list.
type ShoppingCartEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Recipe    *Recipe   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingListItem is one aggregated line of a shopping list.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int64  `json:"total"`
}
