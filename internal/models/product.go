package models

import "time"

// ProductKind selects which block of cutting rules a product uses.
type ProductKind string

const (
	KindBella    ProductKind = "BELLA"
	KindPanel    ProductKind = "PANEL"
	KindWingback ProductKind = "WINGBACK" // add-on, only reached through Product.HasWingback
)

type Size struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

type Fabric struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Colors []Color `json:"colors,omitempty"`
}

type Color struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex:idx_color_fabric_name" json:"name"`
	FabricID uint   `gorm:"not null;uniqueIndex:idx_color_fabric_name" json:"fabricId"`
}

type Product struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Kind        ProductKind `gorm:"size:20" json:"kind,omitempty"`
	HasWingback bool        `gorm:"not null;default:false" json:"hasWingback"`
	Sizes       []Size      `gorm:"many2many:product_sizes;" json:"sizes"`
	Fabrics     []Fabric    `gorm:"many2many:product_fabrics;" json:"fabrics"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
