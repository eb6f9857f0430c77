package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionUndo   AuditAction = "undo"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID    uint   `json:"userId"`
	UserEmail string `gorm:"size:100" json:"userEmail"`

	// e.g. "supplier", "supplier_product", "inventory", "order", "product"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// JSON snapshots; "null" when absent
	BeforeData string `gorm:"type:jsonb" json:"beforeData"`
	AfterData  string `gorm:"type:jsonb" json:"afterData"`

	IsUndone bool       `gorm:"default:false" json:"isUndone"`
	UndoneBy *uint      `json:"undoneBy"`
	UndoneAt *time.Time `json:"undoneAt"`
}
