package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Units of measure accepted for ingredients and recipe items.
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilliliter = "ml"
	UnitLiter      = "l"
	UnitPiece      = "un"
)

// ValidUnit reports whether the provided value is a recognized unit of measure.
func ValidUnit(unit string) bool {
	switch unit {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece:
		return true
	}
	return false
}

// Ingredient is a raw material kept in stock. StockQuantity is only mutated
// through purchases and the batch stock-transfer engine and never goes
// negative.
type Ingredient struct {
	gorm.Model
	Name          string          `gorm:"uniqueIndex;not null" json:"name"`
	Unit          string          `gorm:"type:varchar(8);not null;default:g" json:"unit"`
	StockQuantity decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"stock_quantity"`
	MinimumStock  decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"minimum_stock"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
}

// BelowMinimum reports whether the current stock has reached the reorder threshold.
func (i Ingredient) BelowMinimum() bool {
	return i.StockQuantity.LessThanOrEqual(i.MinimumStock)
}
