package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a finished good available for sale. The product backing a recipe
// is created lazily by the first batch of that recipe; afterwards its stock is
// mutated only by batch transfers and sale deductions.
type Product struct {
	gorm.Model
	Name          string          `gorm:"uniqueIndex;not null" json:"name"`
	StockQuantity decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"stock_quantity"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"sale_price"`
}
