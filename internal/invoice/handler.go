package invoice

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"furniture-backend/internal/database"
	"furniture-backend/internal/models"
	"furniture-backend/internal/suppliers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const minPartialMatch = 3

type textRequest struct {
	Text string `json:"text"`
}

type CreatePurchaseRequest struct {
	ParsedInvoice ParsedInvoice `json:"parsedInvoice"`
	SupplierID    uint          `json:"supplierId"`
}

type ItemFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type CreatePurchaseResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Purchases []models.Purchase `json:"purchases"`
	Failed    []ItemFailure     `json:"failed,omitempty"`
}

// matchProduct finds the supplier's product an invoice line refers to:
// an exact case-insensitive name first, then the longest name that
// contains or is contained in the line's name.
func matchProduct(products []models.SupplierProduct, name string) *models.SupplierProduct {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	for i := range products {
		if strings.ToLower(products[i].Name) == want {
			return &products[i]
		}
	}

	var best *models.SupplierProduct
	bestScore := 0
	for i := range products {
		have := strings.ToLower(products[i].Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			if score := len(have); score > bestScore {
				best, bestScore = &products[i], score
			}
		}
	}
	if bestScore < minPartialMatch {
		return nil
	}
	return best
}

func purchaseItem(tx *gorm.DB, supplierID uint, date string, it ParsedItem) (*models.Purchase, error) {
	var products []models.SupplierProduct
	if err := tx.Where("supplier_id = ?", supplierID).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}

	product := matchProduct(products, it.Name)
	if product == nil {
		product = &models.SupplierProduct{
			SupplierID: supplierID,
			Name:       strings.TrimSpace(it.Name),
			UnitCost:   it.UnitPrice,
		}
		if err := tx.Create(product).Error; err != nil {
			return nil, fmt.Errorf("create product %q: %w", it.Name, err)
		}
		slog.Info("invoice created supplier product", "supplier_id", supplierID, "name", product.Name)
	}

	return suppliers.RecordPurchase(tx, suppliers.PurchaseInput{
		ProductID:  product.ID,
		SupplierID: supplierID,
		Quantity:   it.Quantity,
		UnitPrice:  it.UnitPrice,
		DateBought: date,
	})
}

// POST /api/invoice-scanning/parse
func ParseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body textRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body, send {\"text\": \"...\"}")
		}
		if strings.TrimSpace(body.Text) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "text cannot be empty")
		}

		parsed := ParseOCRText(body.Text)
		slog.Info("invoice parsed", "chars", len(body.Text), "items", len(parsed.Items))
		return c.JSON(fiber.Map{"success": true, "data": parsed})
	}
}

// POST /api/invoice-scanning/create-purchase
//
// Every item gets its own transaction; an item that fails is reported and
// skipped.
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.ParsedInvoice.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No items found in invoice")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, body.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load supplier")
		}

		date := ""
		if body.ParsedInvoice.Date != "" {
			if d, ok := PurchaseDate(body.ParsedInvoice.Date); ok {
				date = d
			}
		}

		resp := CreatePurchaseResponse{Success: true, Purchases: []models.Purchase{}}
		for _, it := range body.ParsedInvoice.Items {
			var created *models.Purchase
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				p, err := purchaseItem(tx, supplier.ID, date, it)
				created = p
				return err
			})
			if err != nil {
				slog.Warn("invoice item skipped", "supplier_id", supplier.ID, "item", it.Name, "err", err)
				resp.Failed = append(resp.Failed, ItemFailure{Name: it.Name, Error: err.Error()})
				continue
			}
			resp.Purchases = append(resp.Purchases, *created)
		}

		resp.Message = fmt.Sprintf("Successfully created %d purchases", len(resp.Purchases))
		return c.JSON(resp)
	}
}

// GET /api/invoice-scanning/suppliers
func SuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.Supplier
		if err := database.DB.Preload("Products").Order("name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(list)
	}
}

// MatchSuppliers returns the suppliers whose name appears in text, or whose
// name contains text.
func MatchSuppliers(list []models.Supplier, text string) []models.Supplier {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]models.Supplier, 0)
	if needle == "" {
		return out
	}
	for _, s := range list {
		name := strings.ToLower(s.Name)
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			out = append(out, s)
		}
	}
	return out
}

// POST /api/invoice-scanning/match-supplier
func MatchSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body textRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var list []models.Supplier
		if err := database.DB.Preload("Products").Order("name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(MatchSuppliers(list, body.Text))
	}
}
