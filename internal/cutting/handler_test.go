package cutting

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"furniture-backend/internal/auth"
	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	rules := DefaultRules()
	if err := db.CreateInBatches(&rules, 50).Error; err != nil {
		t.Fatalf("seed rules: %v", err)
	}

	size := models.Size{Name: "Queen"}
	fabric := models.Fabric{Name: "Velvet"}
	if err := db.Create(&size).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&fabric).Error; err != nil {
		t.Fatal(err)
	}
	color := models.Color{Name: "Black", FabricID: fabric.ID}
	if err := db.Create(&color).Error; err != nil {
		t.Fatal(err)
	}
	product := models.Product{Name: "Bella Headboard", Kind: models.KindBella}
	if err := db.Create(&product).Error; err != nil {
		t.Fatal(err)
	}

	o := models.Order{
		DueDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductID: product.ID, SizeID: &size.ID, FabricID: &fabric.ID, ColorID: &color.ID, Quantity: 1},
			{ProductID: product.ID, SizeID: &size.ID, Quantity: 0},
		},
	}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o.ID
}

func newTestApp(db *gorm.DB, id auth.Identity) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		auth.SetIdentity(c, id)
		return c.Next()
	})

	h := NewHandler(NewService(NewGormOrderStore(db), NewGormRuleStore(db)))
	app.Get("/api/departments/:dept/cutting-slips", h.GetSlip())
	app.Get("/api/departments/:dept/cutting-slips/:orderId", h.GetSlip())
	app.Get("/api/departments/:dept/cutting-slip-exports", h.ExportSlip())
	app.Get("/api/departments/:dept/cutting-slip-exports/:orderId", h.ExportSlip())
	return app
}

func TestGetSlipHandler(t *testing.T) {
	db := dbtest.Open(t)
	orderID := seedOrder(t, db)

	wood := models.DeptWood
	admin := auth.Identity{UserID: 1, Role: models.RoleAdmin}
	woodUser := auth.Identity{UserID: 2, Role: models.RoleDepartment, Department: &wood}

	tests := []struct {
		name string
		as   auth.Identity
		path string
		want int
	}{
		{"admin aggregate", admin, "/api/departments/fabric/cutting-slips", fiber.StatusOK},
		{"admin per order", admin, "/api/departments/fabric/cutting-slips/" + itoa(orderID), fiber.StatusOK},
		{"missing order", admin, "/api/departments/fabric/cutting-slips/9999", fiber.StatusNotFound},
		{"non numeric order", admin, "/api/departments/fabric/cutting-slips/abc", fiber.StatusBadRequest},
		{"unknown department", admin, "/api/departments/metal/cutting-slips", fiber.StatusNotFound},
		{"own department", woodUser, "/api/departments/wood/cutting-slips/" + itoa(orderID), fiber.StatusOK},
		{"other department", woodUser, "/api/departments/fabric/cutting-slips", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(db, tt.as)
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.want, body)
			}
		})
	}

	t.Run("per order body", func(t *testing.T) {
		app := newTestApp(db, admin)
		resp, err := app.Test(httptest.NewRequest("GET", "/api/departments/fabric/cutting-slips/"+itoa(orderID), nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		var slip struct {
			Department string  `json:"department"`
			Type       string  `json:"type"`
			Scope      Scope   `json:"scope"`
			Pieces     []Piece `json:"pieces"`
			ReadOnly   bool    `json:"readOnly"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&slip); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if slip.Department != "MATERIALS" || slip.Type != "FABRIC_CUTTING_SLIP" || !slip.ReadOnly {
			t.Errorf("slip = %+v", slip)
		}
		if slip.Scope.OrderID == nil || *slip.Scope.OrderID != orderID || slip.Scope.DueDate == nil {
			t.Errorf("scope = %+v", slip.Scope)
		}
		for _, p := range slip.Pieces {
			if p.Material == VelvetPlaceholder {
				t.Errorf("placeholder leaked: %+v", p)
			}
		}
		if !hasPiece(slip.Pieces, Piece{Material: "Velvet", Width: 1450, Height: 1200, Quantity: 1, Note: "front piece"}) {
			t.Errorf("front piece missing: %+v", slip.Pieces)
		}
	})
}

func TestExportSlipHandler(t *testing.T) {
	db := dbtest.Open(t)
	orderID := seedOrder(t, db)

	app := newTestApp(db, auth.Identity{UserID: 1, Role: models.RoleAdmin})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/departments/wood/cutting-slip-exports/"+itoa(orderID), nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !bytes.Contains([]byte(cd), []byte("WOOD_CUTTING_SLIP_order_")) {
		t.Errorf("content disposition = %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) < 2 || rows[0][0] != "Material" {
		t.Fatalf("rows = %v", rows)
	}

	var found bool
	for _, r := range rows[1:] {
		if len(r) >= 5 && r[0] == "PINE" && r[2] == "1450" && r[3] == "33" && r[4] == "2" {
			found = true
		}
	}
	if !found {
		t.Errorf("PINE 1450x33 x2 row missing: %v", rows)
	}
}

func itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }
