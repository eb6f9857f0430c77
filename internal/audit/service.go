package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"furniture-backend/internal/models"

	"gorm.io/gorm"
)

const (
	EntitySupplier        = "supplier"
	EntitySupplierProduct = "supplier_product"
	EntityInventory       = "inventory"
)

var (
	ErrAlreadyUndone = errors.New("this change has already been undone")
	ErrNotUndoable   = errors.New("this change cannot be undone")
)

type LogOptions struct {
	UserID      uint
	UserEmail   string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func snapshot(v any) string {
	// jsonb columns take "null", not ""
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// WriteLog records one change. Pass the transaction the change ran in so
// the entry commits or rolls back with it.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserEmail:   opts.UserEmail,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// UndoLog reverts the change recorded by logID and records the undo itself.
func UndoLog(db *gorm.DB, logID, userID uint, userEmail string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, logID).Error; err != nil {
			return fmt.Errorf("audit log %d: %w", logID, err)
		}
		if entry.IsUndone {
			return ErrAlreadyUndone
		}

		var err error
		switch entry.Action {
		case models.AuditActionCreate:
			err = deleteEntity(tx, entry.EntityType, entry.EntityID)
		case models.AuditActionUpdate:
			err = restoreEntity(tx, entry.EntityType, entry.EntityID, entry.BeforeData)
		case models.AuditActionDelete:
			err = recreateEntity(tx, entry.EntityType, entry.BeforeData)
		default:
			err = ErrNotUndoable
		}
		if err != nil {
			return err
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("mark audit log undone: %w", err)
		}

		return WriteLog(tx, LogOptions{
			UserID:      userID,
			UserEmail:   userEmail,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: "Undone: " + entry.Description,
			Before:      json.RawMessage(entry.AfterData),
			After:       json.RawMessage(entry.BeforeData),
		})
	})
}

func deleteEntity(tx *gorm.DB, entityType string, id uint) error {
	switch entityType {
	case EntitySupplier:
		return tx.Delete(&models.Supplier{}, id).Error
	case EntitySupplierProduct:
		return tx.Delete(&models.SupplierProduct{}, id).Error
	case EntityInventory:
		return tx.Delete(&models.Inventory{}, id).Error
	}
	return fmt.Errorf("%w: unknown entity type %s", ErrNotUndoable, entityType)
}

// recreateEntity restores a deleted row under its original id.
func recreateEntity(tx *gorm.DB, entityType, data string) error {
	switch entityType {
	case EntitySupplier:
		var s models.Supplier
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return err
		}
		s.Products, s.Purchases = nil, nil
		return tx.Create(&s).Error
	case EntitySupplierProduct:
		var p models.SupplierProduct
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		p.Supplier, p.Inventory = nil, nil
		return tx.Create(&p).Error
	case EntityInventory:
		var inv models.Inventory
		if err := json.Unmarshal([]byte(data), &inv); err != nil {
			return err
		}
		inv.Product = nil
		return tx.Create(&inv).Error
	}
	return fmt.Errorf("%w: unknown entity type %s", ErrNotUndoable, entityType)
}

func restoreEntity(tx *gorm.DB, entityType string, id uint, data string) error {
	switch entityType {
	case EntitySupplier:
		var s models.Supplier
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return err
		}
		return tx.Model(&models.Supplier{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":         s.Name,
			"contact_name": s.ContactName,
			"phone":        s.Phone,
			"email":        s.Email,
			"address":      s.Address,
			"notes":        s.Notes,
		}).Error
	case EntitySupplierProduct:
		var p models.SupplierProduct
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		return tx.Model(&models.SupplierProduct{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":                p.Name,
			"description":         p.Description,
			"unit_cost":           p.UnitCost,
			"low_stock_threshold": p.LowStockThreshold,
		}).Error
	case EntityInventory:
		var inv models.Inventory
		if err := json.Unmarshal([]byte(data), &inv); err != nil {
			return err
		}
		return tx.Model(&models.Inventory{}).Where("id = ?", id).Update("quantity", inv.Quantity).Error
	}
	return fmt.Errorf("%w: unknown entity type %s", ErrNotUndoable, entityType)
}
