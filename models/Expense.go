package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense categories mirrored from the bookkeeping screens.
const (
	ExpenseFixed   = "fixed"
	ExpensePayroll = "payroll"
	ExpenseOther   = "other"
)

// ValidExpenseCategory reports whether the provided value names a known category.
func ValidExpenseCategory(category string) bool {
	switch category {
	case ExpenseFixed, ExpensePayroll, ExpenseOther:
		return true
	}
	return false
}

// Expense is an outgoing payment. Fixed expenses carry a recurring day of the
// month; payroll and one-off expenses carry the exact payment date instead.
type Expense struct {
	gorm.Model
	Description string          `gorm:"not null" json:"description"`
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"value"`
	Category    string          `gorm:"type:varchar(10);not null;default:other" json:"category"`
	DueDay      *int            `json:"due_day"`
	PaidAt      *time.Time      `json:"paid_at"`
	RecordedAt  time.Time       `gorm:"not null" json:"recorded_at"`
}
