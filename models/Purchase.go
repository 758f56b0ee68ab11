package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase records restocking an ingredient. Creating a purchase credits the
// ingredient's stock within the same transaction.
type Purchase struct {
	gorm.Model
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
	PurchasedAt  time.Time       `gorm:"not null" json:"purchased_at"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

// TotalValue returns quantity × unit price rounded to cents.
func (p Purchase) TotalValue() decimal.Decimal {
	return p.Quantity.Mul(p.UnitPrice).Round(2)
}
