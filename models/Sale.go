package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted at the counter.
const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
	PaymentDebit  = "debit"
	PaymentPix    = "pix"
	PaymentOther  = "other"
)

// ValidPaymentMethod reports whether the provided value names a known method.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix, PaymentOther:
		return true
	}
	return false
}

// Sale records one counter transaction. TotalValue is the sum of the item
// subtotals minus the discount. Registering a sale debits product stock and
// refreshes the customer's LastContact.
type Sale struct {
	gorm.Model
	Reference     string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	CustomerID    *uint           `json:"customer_id"`
	SoldAt        time.Time       `gorm:"not null" json:"sold_at"`
	PaymentMethod string          `gorm:"type:varchar(10);not null;default:cash" json:"payment_method"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	TotalValue    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_value"`

	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem is one product line of a sale. Subtotal is quantity × the product's
// sale price at the time of sale.
type SaleItem struct {
	gorm.Model
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
