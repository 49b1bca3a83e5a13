package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the aggregate root: owned by exactly one user and referencing
// zero or more of that same user's tags and ingredients. OwnerID is immutable
// after creation; update payloads that try to change it are ignored.
type Recipe struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OwnerID     uint            `gorm:"not null;index" json:"-"`
	Title       string          `gorm:"not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"price"`
	Description string          `json:"description"`
	Link        string          `json:"link"`
	Image       string          `json:"image"`
	Tags        []Tag           `gorm:"many2many:recipe_tags;" json:"tags"`
	Ingredients []Ingredient    `gorm:"many2many:recipe_ingredients;" json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
