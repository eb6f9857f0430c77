package suppliers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"furniture-backend/internal/database/dbtest"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	r := app.Group("/suppliers")
	r.Post("/purchases", CreatePurchaseHandler())
	r.Get("/purchases", ListPurchasesHandler())
	r.Get("/purchases/:id", GetPurchaseHandler())
	r.Post("/purchases/:purchaseId/payments", AddPaymentHandler())
	r.Get("/purchases/:purchaseId/payments", ListPaymentsHandler())
	r.Patch("/products/:productId", UpdateProductHandler())
	r.Delete("/products/:productId", DeleteProductHandler())
	r.Post("/", CreateSupplierHandler())
	r.Get("/", ListSuppliersHandler())
	r.Get("/:id", GetSupplierHandler())
	r.Patch("/:id", UpdateSupplierHandler())
	r.Delete("/:id", DeleteSupplierHandler())
	r.Post("/:supplierId/products", CreateProductHandler())
	r.Get("/:supplierId/products", ListProductsHandler())
	r.Get("/:id/balance", BalanceHandler())
	r.Get("/:id/analytics", AnalyticsHandler())
	return app
}

func TestSupplierLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	app := newTestApp()

	do := func(method, path, body string, out any) int {
		t.Helper()
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		if out != nil && resp.StatusCode < 300 {
			if err := json.Unmarshal(buf.Bytes(), out); err != nil {
				t.Fatalf("decode %s: %v (%s)", path, err, buf.String())
			}
		}
		return resp.StatusCode
	}
	str := func(id uint) string { return strconv.FormatUint(uint64(id), 10) }

	var supplier models.Supplier
	if code := do("POST", "/suppliers", `{"name":"Soft Fabrics","phone":"0123"}`, &supplier); code != fiber.StatusCreated {
		t.Fatalf("create supplier = %d", code)
	}
	if code := do("POST", "/suppliers", `{"phone":"0123"}`, nil); code != fiber.StatusBadRequest {
		t.Errorf("nameless supplier = %d", code)
	}

	var product models.SupplierProduct
	code := do("POST", "/suppliers/"+str(supplier.ID)+"/products", `{"name":"Velvet Black","unitCost":"18.50","lowStockThreshold":5}`, &product)
	if code != fiber.StatusCreated {
		t.Fatalf("create product = %d", code)
	}
	if code := do("POST", "/suppliers/999/products", `{"name":"X","unitCost":1}`, nil); code != fiber.StatusNotFound {
		t.Errorf("product for unknown supplier = %d", code)
	}

	var purchase models.Purchase
	body := `{"productId":` + str(product.ID) + `,"quantity":10,"unitPrice":18.5,"dateBought":"2025-02-01"}`
	if code := do("POST", "/suppliers/purchases", body, &purchase); code != fiber.StatusCreated {
		t.Fatalf("create purchase = %d", code)
	}
	if purchase.TotalPrice.String() != "185" {
		t.Errorf("total = %s, want 185", purchase.TotalPrice)
	}

	var payment models.Payment
	if code := do("POST", "/suppliers/purchases/"+str(purchase.ID)+"/payments", `{"amountPaid":85,"notes":"first"}`, &payment); code != fiber.StatusCreated {
		t.Fatalf("add payment = %d", code)
	}
	if code := do("POST", "/suppliers/purchases/999/payments", `{"amountPaid":1}`, nil); code != fiber.StatusNotFound {
		t.Errorf("payment for unknown purchase = %d", code)
	}
	if code := do("POST", "/suppliers/purchases/"+str(purchase.ID)+"/payments", `{"amountPaid":0}`, nil); code != fiber.StatusBadRequest {
		t.Errorf("zero payment = %d", code)
	}

	var balance Balance
	if code := do("GET", "/suppliers/"+str(supplier.ID)+"/balance", "", &balance); code != fiber.StatusOK {
		t.Fatalf("balance = %d", code)
	}
	if balance.BalanceOwed.String() != "100" {
		t.Errorf("owed = %s, want 100", balance.BalanceOwed)
	}
	if code := do("GET", "/suppliers/999/balance", "", nil); code != fiber.StatusNotFound {
		t.Errorf("unknown balance = %d", code)
	}

	var analytics Analytics
	if code := do("GET", "/suppliers/"+str(supplier.ID)+"/analytics", "", &analytics); code != fiber.StatusOK {
		t.Fatalf("analytics = %d", code)
	}
	if analytics.TotalOrders != 1 || len(analytics.TopProducts) != 1 {
		t.Errorf("analytics = %+v", analytics)
	}

	var purchases []models.Purchase
	do("GET", "/suppliers/purchases?supplierId="+str(supplier.ID), "", &purchases)
	if len(purchases) != 1 || len(purchases[0].Payments) != 1 {
		t.Errorf("purchases = %+v", purchases)
	}

	var updated models.SupplierProduct
	if code := do("PATCH", "/suppliers/products/"+str(product.ID), `{"unitCost":20}`, &updated); code != fiber.StatusOK {
		t.Fatalf("update product = %d", code)
	}
	if updated.UnitCost.String() != "20" || updated.Name != "Velvet Black" {
		t.Errorf("updated = %+v", updated)
	}

	if code := do("DELETE", "/suppliers/"+str(supplier.ID), "", nil); code != fiber.StatusOK {
		t.Fatalf("delete supplier = %d", code)
	}
	for _, m := range []any{&models.SupplierProduct{}, &models.Purchase{}, &models.Payment{}, &models.Inventory{}} {
		var n int64
		db.Model(m).Count(&n)
		if n != 0 {
			t.Errorf("%T rows left after supplier delete: %d", m, n)
		}
	}
	if code := do("GET", "/suppliers/"+str(supplier.ID), "", nil); code != fiber.StatusNotFound {
		t.Errorf("deleted supplier = %d", code)
	}

	var logs int64
	db.Model(&models.AuditLog{}).Count(&logs)
	// supplier create, product create, product update, supplier delete
	if logs != 4 {
		t.Errorf("audit logs = %d, want 4", logs)
	}
}
