package models

// Tag is admin-managed reference data attached to recipes.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Color string `json:"color" gorm:"size:7;not null;uniqueIndex"` // #RRGGBB
	Slug  string `json:"slug" gorm:"size:200;not null;uniqueIndex"`
}

// Ingredient is reference data loaded from a fixture file. The same name may
// exist under several measurement units.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}
