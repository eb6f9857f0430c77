package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// money goes over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Supplier struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:200;not null" json:"name"`
	ContactName string            `gorm:"size:150" json:"contactName"`
	Phone       string            `gorm:"size:50" json:"phone"`
	Email       string            `gorm:"size:150" json:"email"`
	Address     string            `gorm:"size:300" json:"address"`
	Notes       string            `gorm:"size:1000" json:"notes"`
	Products    []SupplierProduct `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	Purchases   []Purchase        `gorm:"constraint:OnDelete:CASCADE" json:"purchases,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// SupplierProduct is a raw material bought from a supplier (fabric rolls,
// pine, foam sheets...). Inventory is tracked per SupplierProduct.
type SupplierProduct struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	SupplierID        uint            `gorm:"index;not null" json:"supplierId"`
	Supplier          *Supplier       `json:"supplier,omitempty"`
	Name              string          `gorm:"size:200;not null" json:"name"`
	Description       string          `gorm:"size:500" json:"description"`
	UnitCost          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitCost"`
	LowStockThreshold *float64        `json:"lowStockThreshold"`
	Inventory         *Inventory      `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type Purchase struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	ProductID  uint             `gorm:"index;not null" json:"productId"`
	Product    *SupplierProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupplierID uint             `gorm:"index;not null" json:"supplierId"`
	Supplier   *Supplier        `json:"supplier,omitempty"`
	Quantity   float64          `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	DateBought time.Time        `gorm:"index;not null" json:"dateBought"`
	LastsUntil *time.Time       `json:"lastsUntil"`
	Payments   []Payment        `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PurchaseID  uint            `gorm:"index;not null" json:"purchaseId"`
	Purchase    *Purchase       `json:"purchase,omitempty"`
	AmountPaid  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amountPaid"`
	PaymentDate time.Time       `gorm:"index;not null" json:"paymentDate"`
	Notes       string          `gorm:"size:500" json:"notes"`
}
