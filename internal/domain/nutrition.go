package domain

import (
	"time"
)

// Product is a catalog item (food with nutrition facts per 100g).
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"index"`
	Calories  float64   `json:"calories"`
	Proteins  float64   `json:"proteins"`
	Fats      float64   `json:"fats"`
	Carbs     float64   `json:"carbs"`
	CreatedBy string    `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DailyRation is one user's diary for one calendar day; meals hang off it.
type DailyRation struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	Date      time.Time `json:"date" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meal is a single logged eating event. Meal rows are the qualifying
// events behind the active-user statistics.
type Meal struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	DailyRationID string    `json:"daily_ration_id" gorm:"index"`
	UserID        string    `json:"user_id" gorm:"index"`
	ProductID     string    `json:"product_id" gorm:"index"`
	WeightGrams   float64   `json:"weight_grams"`
	EatenAt       time.Time `json:"eaten_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
