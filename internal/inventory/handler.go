package inventory

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"furniture-backend/internal/audit"
	"furniture-backend/internal/database"
	"furniture-backend/internal/metrics"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateInventoryRequest struct {
	ProductID       uint    `json:"productId"`
	InitialQuantity float64 `json:"initialQuantity"`
}

type UpdateQuantityRequest struct {
	Quantity  float64   `json:"quantity"`
	Operation Operation `json:"operation"`
}

type DispatchRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason"`
}

type BatchDispatchRequest struct {
	Items []struct {
		ProductID uint    `json:"productId"`
		Quantity  float64 `json:"quantity"`
		Reason    string  `json:"reason"`
	} `json:"items"`
}

type DispatchResult struct {
	ProductID uint   `json:"productId"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// ItemView is an inventory row with the fields the stock screens show.
type ItemView struct {
	models.Inventory
	LowStock bool `json:"lowStock"`
}

type Handler struct {
	lowStockDefault float64
}

func NewHandler(lowStockDefault float64) *Handler {
	return &Handler{lowStockDefault: lowStockDefault}
}

func withProduct(db *gorm.DB) *gorm.DB {
	return db.Preload("Product").Preload("Product.Supplier")
}

func (h *Handler) views(items []models.Inventory) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, inv := range items {
		out = append(out, ItemView{Inventory: inv, LowStock: IsLow(inv, h.lowStockDefault)})
	}
	return out
}

func productIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidOperation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Inventory update failed")
}

// GET /api/inventory
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Inventory
		if err := withProduct(database.DB).Order("id ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list inventory")
		}
		return c.JSON(h.views(items))
	}
}

// GET /api/inventory/low-stock
func (h *Handler) LowStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Inventory
		if err := withProduct(database.DB).Order("quantity ASC, id ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list inventory")
		}

		low := make([]models.Inventory, 0)
		for _, inv := range items {
			if IsLow(inv, h.lowStockDefault) {
				low = append(low, inv)
			}
		}
		return c.JSON(h.views(low))
	}
}

// GET /api/inventory/supplier/:supplierId
func (h *Handler) BySupplier() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := productIDParam(c, "supplierId")
		if err != nil {
			return err
		}

		var items []models.Inventory
		err = withProduct(database.DB).
			Joins("JOIN supplier_products ON supplier_products.id = inventories.product_id").
			Where("supplier_products.supplier_id = ?", supplierID).
			Order("inventories.id ASC").
			Find(&items).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list inventory")
		}
		return c.JSON(h.views(items))
	}
}

// GET /api/inventory/search?q=velvet
func (h *Handler) Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.ToLower(strings.TrimSpace(c.Query("q")))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q is required")
		}
		like := "%" + q + "%"

		var items []models.Inventory
		err := withProduct(database.DB).
			Joins("JOIN supplier_products ON supplier_products.id = inventories.product_id").
			Joins("JOIN suppliers ON suppliers.id = supplier_products.supplier_id").
			Where("LOWER(supplier_products.name) LIKE ? OR LOWER(supplier_products.description) LIKE ? OR LOWER(suppliers.name) LIKE ?", like, like, like).
			Order("inventories.id ASC").
			Find(&items).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Search failed")
		}
		return c.JSON(h.views(items))
	}
}

// POST /api/inventory
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInventoryRequest
		if err := c.BodyParser(&body); err != nil || body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "productId is required")
		}

		userID, email := audit.Actor(c)
		var created *models.Inventory
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			inv, err := Create(tx, body.ProductID, body.InitialQuantity)
			if err != nil {
				return err
			}
			created = inv
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntityInventory,
				EntityID:    inv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Inventory created for product %d with %g", inv.ProductID, inv.Quantity),
				After:       inv,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PATCH /api/inventory/:productId/quantity
func (h *Handler) UpdateQuantity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := productIDParam(c, "productId")
		if err != nil {
			return err
		}
		var body UpdateQuantityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		userID, email := audit.Actor(c)
		var after models.Inventory
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var before models.Inventory
			var err error
			before, after, err = UpdateQuantity(tx, productID, body.Quantity, body.Operation)
			if err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntityInventory,
				EntityID:    after.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Quantity of product %d: %g -> %g", productID, before.Quantity, after.Quantity),
				Before:      before,
				After:       after,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		return c.JSON(after)
	}
}

// DELETE /api/inventory/:productId
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := productIDParam(c, "productId")
		if err != nil {
			return err
		}

		userID, email := audit.Actor(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			inv, err := itemFor(tx, productID)
			if err != nil {
				return err
			}
			if err := tx.Delete(inv).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntityInventory,
				EntityID:    inv.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Inventory of product %d deleted", productID),
				Before:      inv,
			})
		})
		if err != nil {
			return toFiberError(err)
		}

		return c.JSON(fiber.Map{"message": "Inventory deleted"})
	}
}

func (h *Handler) dispatchOne(c *fiber.Ctx, productID uint, qty float64, reason string) (*models.Inventory, error) {
	userID, email := audit.Actor(c)
	var out *models.Inventory
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		before, err := itemFor(tx, productID)
		if err != nil {
			return err
		}
		inv, err := Dispatch(tx, productID, qty, reason)
		if err != nil {
			return err
		}
		out = inv
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			UserEmail:   email,
			EntityType:  audit.EntityInventory,
			EntityID:    inv.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Dispatched %g of product %d: %s", qty, productID, reason),
			Before:      before,
			After:       inv,
		})
	})
	metrics.Dispatch(err == nil)
	return out, err
}

// POST /api/inventory/:productId/dispatch
func (h *Handler) Dispatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := productIDParam(c, "productId")
		if err != nil {
			return err
		}
		var body DispatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		inv, err := h.dispatchOne(c, productID, body.Quantity, body.Reason)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(inv)
	}
}

// POST /api/inventory/batch-dispatch
//
// Each item runs in its own transaction; one failure does not undo the rest.
func (h *Handler) BatchDispatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BatchDispatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "items is required")
		}

		results := make([]DispatchResult, 0, len(body.Items))
		for _, it := range body.Items {
			res := DispatchResult{ProductID: it.ProductID, Success: true, Message: "Dispatched"}
			if _, err := h.dispatchOne(c, it.ProductID, it.Quantity, it.Reason); err != nil {
				slog.Warn("batch dispatch item failed", "product_id", it.ProductID, "err", err)
				res.Success = false
				res.Message = err.Error()
			}
			results = append(results, res)
		}
		return c.JSON(fiber.Map{"results": results})
	}
}
