package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeItem is one ingredient line of a recipe. GrossWeight is the
// as-purchased weight; NetWeight the usable weight after trim. Exactly one of
// {NetWeight, CorrectionFactor} is supplied by the user and the other is
// derived so that NetWeight × CorrectionFactor ≈ GrossWeight. UnitPrice
// defaults to the ingredient's current price unless overridden; LineCost is
// NetWeight × UnitPrice.
type RecipeItem struct {
	gorm.Model
	RecipeID         uint            `gorm:"not null;index" json:"recipe_id"`
	IngredientID     uint            `gorm:"not null" json:"ingredient_id"`
	Unit             string          `gorm:"type:varchar(8);not null;default:g" json:"unit"`
	GrossWeight      decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"gross_weight"`
	NetWeight        decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"net_weight"`
	CorrectionFactor decimal.Decimal `gorm:"type:numeric(12,3);not null;default:1" json:"correction_factor"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_price"`
	LineCost         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"line_cost"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
