package inventory

import (
	"errors"
	"testing"
	"time"

	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		qty     float64
		op      Operation
		want    float64
		wantErr error
	}{
		{"add", 10, 5, OpAdd, 15, nil},
		{"subtract", 10, 4, OpSubtract, 6, nil},
		{"subtract floors at zero", 3, 5, OpSubtract, 0, nil},
		{"set", 10, 2, OpSet, 2, nil},
		{"empty op sets", 10, 7, "", 7, nil},
		{"negative quantity", 10, -1, OpAdd, 0, ErrInvalidQuantity},
		{"unknown op", 10, 1, "multiply", 0, ErrInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.current, tt.qty, tt.op)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Apply = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestIsLow(t *testing.T) {
	five := 5.0
	withThreshold := &models.SupplierProduct{LowStockThreshold: &five}
	noThreshold := &models.SupplierProduct{}

	tests := []struct {
		name     string
		inv      models.Inventory
		fallback float64
		want     bool
	}{
		{"below own threshold", models.Inventory{Product: withThreshold, Quantity: 4}, 0, true},
		{"at own threshold", models.Inventory{Product: withThreshold, Quantity: 5}, 0, false},
		{"fallback applies", models.Inventory{Product: noThreshold, Quantity: 1}, 2, true},
		{"no threshold anywhere", models.Inventory{Product: noThreshold, Quantity: 0}, 0, false},
		{"product not loaded", models.Inventory{Quantity: 1}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLow(tt.inv, tt.fallback); got != tt.want {
				t.Errorf("IsLow = %v, want %v", got, tt.want)
			}
		})
	}
}

func seedProduct(t *testing.T, db *gorm.DB, supplierName, productName string, unitCost string) models.SupplierProduct {
	t.Helper()
	var s models.Supplier
	if err := db.Where(models.Supplier{Name: supplierName}).FirstOrCreate(&s).Error; err != nil {
		t.Fatal(err)
	}
	p := models.SupplierProduct{
		SupplierID: s.ID,
		Name:       productName,
		UnitCost:   decimal.RequireFromString(unitCost),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAddStockCreatesThenIncrements(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Pine Co", "Pine 33mm", "4.50")

	if _, err := AddStock(db, p.ID, 10); err != nil {
		t.Fatal(err)
	}
	inv, err := AddStock(db, p.ID, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Quantity != 12.5 {
		t.Errorf("quantity = %g, want 12.5", inv.Quantity)
	}

	var rows int64
	db.Model(&models.Inventory{}).Where("product_id = ?", p.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestDispatch(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Foam Ltd", "Foam 50mm", "12")
	if _, err := AddStock(db, p.ID, 5); err != nil {
		t.Fatal(err)
	}

	inv, err := Dispatch(db, p.ID, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if inv.Quantity != 2 {
		t.Errorf("quantity = %g, want 2", inv.Quantity)
	}

	if _, err := Dispatch(db, p.ID, 3, "too much"); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("overdraw err = %v, want ErrInsufficientStock", err)
	}
	if _, err := Dispatch(db, p.ID, 0, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := Dispatch(db, 999, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown err = %v, want ErrNotFound", err)
	}

	var stored models.Inventory
	db.Where("product_id = ?", p.ID).First(&stored)
	if stored.Quantity != 2 {
		t.Errorf("stored quantity = %g after failed dispatch, want 2", stored.Quantity)
	}
}

func TestUpdateQuantitySubtractNeverNegative(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Fabrics", "Velvet Black", "20")
	if _, err := AddStock(db, p.ID, 4); err != nil {
		t.Fatal(err)
	}

	before, after, err := UpdateQuantity(db, p.ID, 10, OpSubtract)
	if err != nil {
		t.Fatal(err)
	}
	if before.Quantity != 4 || after.Quantity != 0 {
		t.Errorf("before/after = %g/%g, want 4/0", before.Quantity, after.Quantity)
	}
}

func TestCreate(t *testing.T) {
	db := dbtest.Open(t)
	p := seedProduct(t, db, "Fabrics", "Linen Sand", "9")

	if _, err := Create(db, p.ID, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(db, p.ID, 3); !errors.Is(err, ErrExists) {
		t.Errorf("second create err = %v, want ErrExists", err)
	}
	if _, err := Create(db, 4242, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown product err = %v, want ErrNotFound", err)
	}
}

func TestSummarize(t *testing.T) {
	two := 2.0
	pine := &models.SupplierProduct{SupplierID: 1, Name: "Pine", UnitCost: decimal.RequireFromString("1.50"), Supplier: &models.Supplier{ID: 1, Name: "Timber"}}
	foam := &models.SupplierProduct{SupplierID: 2, Name: "Foam", UnitCost: decimal.RequireFromString("10"), LowStockThreshold: &two, Supplier: &models.Supplier{ID: 2, Name: "Foamy"}}

	items := []models.Inventory{
		{Product: pine, Quantity: 10},
		{Product: foam, Quantity: 1},
		{Product: foam, Quantity: 0},
	}
	now := time.Now()
	var purchases []models.Purchase
	for i := 0; i < 12; i++ {
		purchases = append(purchases, models.Purchase{Product: pine, Quantity: float64(i), DateBought: now.Add(time.Duration(i) * time.Hour)})
	}

	a := Summarize(items, purchases, 0)
	if a.TotalItems != 11 {
		t.Errorf("TotalItems = %g, want 11", a.TotalItems)
	}
	if !a.TotalValue.Equal(decimal.RequireFromString("25")) {
		t.Errorf("TotalValue = %s, want 25", a.TotalValue)
	}
	if a.LowStockCount != 2 || a.OutOfStockCount != 1 {
		t.Errorf("low/out = %d/%d, want 2/1", a.LowStockCount, a.OutOfStockCount)
	}
	if len(a.TopSuppliers) != 2 || a.TopSuppliers[0].SupplierName != "Timber" {
		t.Errorf("TopSuppliers = %+v", a.TopSuppliers)
	}
	if len(a.RecentMovements) != recentMovementsLimit || a.RecentMovements[0].Quantity != 11 {
		t.Errorf("RecentMovements = %+v", a.RecentMovements)
	}
}
