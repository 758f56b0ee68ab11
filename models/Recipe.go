package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe describes how a finished product is made. TotalCost and
// CostPerPortion are derived fields owned by the costing engine; they are
// recomputed whenever an item changes or the yield changes, never edited
// directly.
type Recipe struct {
	gorm.Model
	Name           string          `gorm:"uniqueIndex;not null" json:"name"`
	Author         string          `json:"author"`
	Instructions   string          `gorm:"type:text" json:"instructions"`
	Yield          int             `gorm:"not null;default:20" json:"yield"`
	TotalCost      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_cost"`
	CostPerPortion decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"cost_per_portion"`
	Items          []RecipeItem    `gorm:"foreignKey:RecipeID" json:"items"`
}
