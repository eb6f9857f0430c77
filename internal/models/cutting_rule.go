package models

import "time"

type SizeKey string

const (
	SizeQueen        SizeKey = "QUEEN"
	SizeDouble       SizeKey = "DOUBLE"
	SizeThreeQuarter SizeKey = "THREE_QUARTER"
	SizeSingle       SizeKey = "SINGLE"
	SizeAny          SizeKey = "ANY"
)

// CuttingRule is one line of a department's bill of materials: the piece to
// cut and how many of it one unit of the product needs. Width and height are
// millimetres; 0x0 marks an irregular piece (triangles, squares) where only
// the count matters.
type CuttingRule struct {
	ID              uint        `gorm:"primaryKey"`
	Department      Department  `gorm:"size:20;not null;index:idx_cutting_rules_lookup,priority:1"`
	ProductKind     ProductKind `gorm:"size:20;not null;index:idx_cutting_rules_lookup,priority:2"`
	SizeKey         SizeKey     `gorm:"size:20;not null;index:idx_cutting_rules_lookup,priority:3"`
	Material        string      `gorm:"size:50;not null"`
	Width           int         `gorm:"not null"`
	Height          int         `gorm:"not null"`
	QuantityPerUnit int         `gorm:"not null"`
	Note            string      `gorm:"size:100"`
	CreatedAt       time.Time
}
