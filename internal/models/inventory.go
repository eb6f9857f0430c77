package models

import "time"

// Inventory: current on-hand quantity of one supplier product.
type Inventory struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"uniqueIndex;not null" json:"productId"`
	Product   *SupplierProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  float64          `gorm:"not null" json:"quantity"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
