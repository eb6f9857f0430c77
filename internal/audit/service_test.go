package audit

import (
	"errors"
	"testing"

	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func lastLog(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var l models.AuditLog
	if err := db.Order("id DESC").First(&l).Error; err != nil {
		t.Fatal(err)
	}
	return l
}

func TestUndoCreate(t *testing.T) {
	db := dbtest.Open(t)

	s := models.Supplier{Name: "Soft Fabrics"}
	db.Create(&s)
	if err := WriteLog(db, LogOptions{UserID: 1, EntityType: EntitySupplier, EntityID: s.ID, Action: models.AuditActionCreate, After: s}); err != nil {
		t.Fatal(err)
	}
	entry := lastLog(t, db)

	if err := UndoLog(db, entry.ID, 1, "admin@example.com"); err != nil {
		t.Fatal(err)
	}
	var n int64
	db.Model(&models.Supplier{}).Count(&n)
	if n != 0 {
		t.Errorf("suppliers = %d after undoing create", n)
	}

	if err := UndoLog(db, entry.ID, 1, "admin@example.com"); !errors.Is(err, ErrAlreadyUndone) {
		t.Errorf("second undo err = %v, want ErrAlreadyUndone", err)
	}

	undo := lastLog(t, db)
	if undo.Action != models.AuditActionUndo || undo.UserEmail != "admin@example.com" {
		t.Errorf("undo entry = %+v", undo)
	}
}

func TestUndoUpdate(t *testing.T) {
	db := dbtest.Open(t)

	s := models.Supplier{Name: "Soft Fabrics"}
	db.Create(&s)
	p := models.SupplierProduct{SupplierID: s.ID, Name: "Velvet", UnitCost: decimal.RequireFromString("10.25")}
	db.Create(&p)

	before := p
	db.Model(&p).Updates(map[string]interface{}{"name": "Velvet Gold", "unit_cost": decimal.NewFromInt(14)})
	if err := WriteLog(db, LogOptions{EntityType: EntitySupplierProduct, EntityID: p.ID, Action: models.AuditActionUpdate, Before: before, After: p}); err != nil {
		t.Fatal(err)
	}

	if err := UndoLog(db, lastLog(t, db).ID, 1, ""); err != nil {
		t.Fatal(err)
	}
	var got models.SupplierProduct
	db.First(&got, p.ID)
	if got.Name != "Velvet" || !got.UnitCost.Equal(decimal.RequireFromString("10.25")) {
		t.Errorf("restored = %+v", got)
	}
}

func TestUndoDeleteRecreatesWithSameID(t *testing.T) {
	db := dbtest.Open(t)

	s := models.Supplier{Name: "Soft Fabrics"}
	db.Create(&s)
	p := models.SupplierProduct{SupplierID: s.ID, Name: "Pine", UnitCost: decimal.NewFromInt(3)}
	db.Create(&p)
	inv := models.Inventory{ProductID: p.ID, Quantity: 7}
	db.Create(&inv)

	db.Delete(&inv)
	if err := WriteLog(db, LogOptions{EntityType: EntityInventory, EntityID: inv.ID, Action: models.AuditActionDelete, Before: inv}); err != nil {
		t.Fatal(err)
	}
	if err := UndoLog(db, lastLog(t, db).ID, 1, ""); err != nil {
		t.Fatal(err)
	}

	var got models.Inventory
	if err := db.First(&got, inv.ID).Error; err != nil {
		t.Fatalf("inventory not recreated: %v", err)
	}
	if got.ProductID != p.ID || got.Quantity != 7 {
		t.Errorf("recreated = %+v", got)
	}
}

func TestUndoUnknownEntity(t *testing.T) {
	db := dbtest.Open(t)

	if err := WriteLog(db, LogOptions{EntityType: "order", EntityID: 1, Action: models.AuditActionCreate}); err != nil {
		t.Fatal(err)
	}
	if err := UndoLog(db, lastLog(t, db).ID, 1, ""); !errors.Is(err, ErrNotUndoable) {
		t.Errorf("err = %v, want ErrNotUndoable", err)
	}
	if err := UndoLog(db, 999, 1, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("missing log err = %v, want ErrRecordNotFound", err)
	}
}
