package models

import "time"

type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	DueDate   time.Time   `gorm:"not null;index" json:"dueDate"`
	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderItem rows are only written for quantity > 0; readers still filter on
// it because older rows may predate that rule.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"index;not null" json:"orderId"`
	ProductID uint     `gorm:"index;not null" json:"productId"`
	Product   *Product `json:"product,omitempty"`
	SizeID    *uint    `json:"sizeId"`
	Size      *Size    `json:"size,omitempty"`
	FabricID  *uint    `json:"fabricId"`
	Fabric    *Fabric  `json:"fabric,omitempty"`
	ColorID   *uint    `json:"colorId"`
	Color     *Color   `json:"color,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
}
