package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Batch records one production run ("fornada") of a recipe. Executions is the
// number of times the recipe was run; UnitsProduced snapshots
// executions × yield at the moment stock was transferred so that a later
// reversal does not depend on the recipe's current state.
type Batch struct {
	gorm.Model
	RecipeID      uint            `gorm:"not null;index" json:"recipe_id"`
	Executions    int             `gorm:"not null;default:1" json:"executions"`
	ProductID     *uint           `json:"product_id"`
	UnitsProduced decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"units_produced"`

	Recipe       *Recipe            `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	Product      *Product           `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Consumptions []BatchConsumption `gorm:"foreignKey:BatchID" json:"consumptions,omitempty"`
}

// BatchConsumption snapshots one ingredient debit applied by a batch. Reversal
// credits exactly these quantities back, regardless of how the recipe has
// changed since.
type BatchConsumption struct {
	gorm.Model
	BatchID      uint            `gorm:"not null;index" json:"batch_id"`
	IngredientID uint            `gorm:"not null" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
