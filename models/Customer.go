package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a bakery client. LastContact is refreshed whenever a sale is
// registered against the customer.
type Customer struct {
	gorm.Model
	Name         string     `json:"name"`
	Nickname     string     `gorm:"type:varchar(50)" json:"nickname"`
	Email        string     `json:"email"`
	Phone        string     `gorm:"type:varchar(15)" json:"phone"`
	CPF          string     `gorm:"type:varchar(14)" json:"cpf"`
	BirthDate    *time.Time `json:"birth_date"`
	Intolerances string     `gorm:"type:text" json:"intolerances"`
	Preferences  string     `gorm:"type:text" json:"preferences"`
	Notes        string     `gorm:"type:text" json:"notes"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	LastContact  *time.Time `json:"last_contact"`
	Addresses    []Address  `gorm:"foreignKey:CustomerID" json:"addresses"`
}

// Address is a delivery address belonging to a customer. At most one address
// per customer is marked primary.
type Address struct {
	gorm.Model
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	ZIP        string `gorm:"type:varchar(9)" json:"zip"`
	Street     string `json:"street"`
	Number     string `gorm:"type:varchar(10)" json:"number"`
	Complement string `gorm:"type:varchar(50)" json:"complement"`
	District   string `gorm:"type:varchar(50)" json:"district"`
	City       string `gorm:"type:varchar(50)" json:"city"`
	State      string `gorm:"type:varchar(2)" json:"state"`
	Primary    bool   `gorm:"not null;default:false" json:"primary"`
}

// PrimaryAddress returns the customer's primary address, or nil when none is set.
func (c Customer) PrimaryAddress() *Address {
	for i := range c.Addresses {
		if c.Addresses[i].Primary {
			return &c.Addresses[i]
		}
	}
	return nil
}
