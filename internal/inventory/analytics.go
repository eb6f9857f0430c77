package inventory

import (
	"cmp"
	"slices"
	"time"

	"furniture-backend/internal/database"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	topSuppliersLimit    = 5
	recentMovementsLimit = 10
)

type SupplierValue struct {
	SupplierID   uint            `json:"supplierId"`
	SupplierName string          `json:"supplierName"`
	TotalItems   float64         `json:"totalItems"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

type Movement struct {
	ProductName string    `json:"productName"`
	Quantity    float64   `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
}

type Analytics struct {
	TotalItems      float64         `json:"totalItems"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	TopSuppliers    []SupplierValue `json:"topSuppliers"`
	RecentMovements []Movement      `json:"recentMovements"`
}

func itemValue(inv models.Inventory) decimal.Decimal {
	if inv.Product == nil {
		return decimal.Zero
	}
	return inv.Product.UnitCost.Mul(decimal.NewFromFloat(inv.Quantity))
}

// ValueBySupplier groups stock value per supplier, highest value first.
// Items must have Product and Product.Supplier loaded.
func ValueBySupplier(items []models.Inventory) []SupplierValue {
	byID := make(map[uint]*SupplierValue)
	for _, inv := range items {
		if inv.Product == nil {
			continue
		}
		sv, ok := byID[inv.Product.SupplierID]
		if !ok {
			sv = &SupplierValue{SupplierID: inv.Product.SupplierID}
			if inv.Product.Supplier != nil {
				sv.SupplierName = inv.Product.Supplier.Name
			}
			byID[inv.Product.SupplierID] = sv
		}
		sv.TotalItems += inv.Quantity
		sv.TotalValue = sv.TotalValue.Add(itemValue(inv))
	}

	out := make([]SupplierValue, 0, len(byID))
	for _, sv := range byID {
		out = append(out, *sv)
	}
	slices.SortFunc(out, func(a, b SupplierValue) int {
		return cmp.Or(b.TotalValue.Cmp(a.TotalValue), cmp.Compare(a.SupplierID, b.SupplierID))
	})
	return out
}

// Summarize builds the dashboard numbers. Movements come from purchases;
// dispatches are not stored as rows.
func Summarize(items []models.Inventory, purchases []models.Purchase, lowStockDefault float64) Analytics {
	a := Analytics{TotalValue: decimal.Zero}
	for _, inv := range items {
		a.TotalItems += inv.Quantity
		a.TotalValue = a.TotalValue.Add(itemValue(inv))
		if IsLow(inv, lowStockDefault) {
			a.LowStockCount++
		}
		if inv.Quantity == 0 {
			a.OutOfStockCount++
		}
	}

	a.TopSuppliers = ValueBySupplier(items)
	if len(a.TopSuppliers) > topSuppliersLimit {
		a.TopSuppliers = a.TopSuppliers[:topSuppliersLimit]
	}

	sorted := slices.Clone(purchases)
	slices.SortStableFunc(sorted, func(a, b models.Purchase) int {
		return b.DateBought.Compare(a.DateBought)
	})
	a.RecentMovements = make([]Movement, 0, min(len(sorted), recentMovementsLimit))
	for _, p := range sorted {
		if len(a.RecentMovements) == recentMovementsLimit {
			break
		}
		m := Movement{Quantity: p.Quantity, Timestamp: p.DateBought, Type: "purchase"}
		if p.Product != nil {
			m.ProductName = p.Product.Name
		}
		a.RecentMovements = append(a.RecentMovements, m)
	}
	return a
}

// GET /api/inventory/analytics
func (h *Handler) Analytics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Inventory
		if err := withProduct(database.DB).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load inventory")
		}
		var purchases []models.Purchase
		err := database.DB.Preload("Product").
			Order("date_bought DESC, id DESC").
			Limit(recentMovementsLimit).
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchases")
		}
		return c.JSON(Summarize(items, purchases, h.lowStockDefault))
	}
}

// GET /api/inventory/value-by-supplier
func (h *Handler) ValueBySupplier() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Inventory
		if err := withProduct(database.DB).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load inventory")
		}
		return c.JSON(ValueBySupplier(items))
	}
}
