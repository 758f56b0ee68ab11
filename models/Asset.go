package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset conditions mirrored from the register screens.
const (
	AssetConditionNew    = "new"
	AssetConditionGood   = "good"
	AssetConditionWorn   = "worn"
	AssetConditionBroken = "broken"
)

// ValidAssetCondition reports whether the provided value names a known condition.
func ValidAssetCondition(condition string) bool {
	switch condition {
	case AssetConditionNew, AssetConditionGood, AssetConditionWorn, AssetConditionBroken:
		return true
	}
	return false
}

// Asset is a piece of owned equipment or furniture: ovens, mixers, display
// cases. Assets never interact with ingredient or product stock.
type Asset struct {
	gorm.Model
	Name      string          `gorm:"not null" json:"name"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitValue decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"unit_value"`
	Condition string          `gorm:"type:varchar(10);not null;default:good" json:"condition"`
	Notes     string          `json:"notes"`
}

// TotalValue is the asset's estimated worth: quantity times unit value.
func (a Asset) TotalValue() decimal.Decimal {
	return a.UnitValue.Mul(decimal.NewFromInt(int64(a.Quantity))).Round(2)
}
