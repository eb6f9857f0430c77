package invoice

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func TestCreatePurchaseFromInvoice(t *testing.T) {
	db := dbtest.Open(t)

	supplier := models.Supplier{Name: "ACME Fabrics"}
	db.Create(&supplier)
	velvet := models.SupplierProduct{SupplierID: supplier.ID, Name: "Velvet Black", UnitCost: decimal.NewFromInt(12)}
	db.Create(&velvet)

	app := fiber.New()
	app.Post("/parse", ParseHandler())
	app.Post("/create-purchase", CreatePurchaseHandler())
	app.Post("/match-supplier", MatchSupplierHandler())

	post := func(path string, body any) (int, []byte) {
		t.Helper()
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return resp.StatusCode, buf.Bytes()
	}

	code, raw := post("/parse", map[string]string{"text": sampleInvoice})
	if code != fiber.StatusOK {
		t.Fatalf("parse = %d (%s)", code, raw)
	}
	var parsed struct {
		Data ParsedInvoice `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatal(err)
	}

	// a bad line the parser would never emit, to exercise the skip path
	parsed.Data.Items = append(parsed.Data.Items, ParsedItem{Name: "Broken", Quantity: 0, UnitPrice: decimal.NewFromInt(1)})

	code, raw = post("/create-purchase", map[string]any{"parsedInvoice": parsed.Data, "supplierId": supplier.ID})
	if code != fiber.StatusOK {
		t.Fatalf("create-purchase = %d (%s)", code, raw)
	}
	var resp CreatePurchaseResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Purchases) != 2 || len(resp.Failed) != 1 || resp.Failed[0].Name != "Broken" {
		t.Fatalf("response = %s", raw)
	}
	if resp.Purchases[0].ProductID != velvet.ID {
		t.Errorf("velvet line bought product %d, want existing %d", resp.Purchases[0].ProductID, velvet.ID)
	}
	if got := resp.Purchases[0].DateBought.Format("2006-01-02"); got != "2025-03-14" {
		t.Errorf("dateBought = %s", got)
	}

	var products int64
	db.Model(&models.SupplierProduct{}).Where("supplier_id = ?", supplier.ID).Count(&products)
	if products != 2 {
		t.Errorf("supplier products = %d, want 2 (pine created, broken rolled back)", products)
	}

	var inv models.Inventory
	db.Where("product_id = ?", velvet.ID).First(&inv)
	if inv.Quantity != 10 {
		t.Errorf("velvet stock = %g, want 10", inv.Quantity)
	}

	code, _ = post("/create-purchase", map[string]any{"parsedInvoice": parsed.Data, "supplierId": 999})
	if code != fiber.StatusNotFound {
		t.Errorf("unknown supplier = %d", code)
	}
	code, _ = post("/create-purchase", map[string]any{"parsedInvoice": ParsedInvoice{}, "supplierId": supplier.ID})
	if code != fiber.StatusBadRequest {
		t.Errorf("no items = %d", code)
	}

	code, raw = post("/match-supplier", map[string]string{"text": "Supplier: ACME Fabrics"})
	var matches []models.Supplier
	_ = json.Unmarshal(raw, &matches)
	if code != fiber.StatusOK || len(matches) != 1 || matches[0].ID != supplier.ID {
		t.Errorf("match-supplier = %d %s", code, raw)
	}
}
