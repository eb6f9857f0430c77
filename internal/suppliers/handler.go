package suppliers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"furniture-backend/internal/audit"
	"furniture-backend/internal/database"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SupplierRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

type ProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	UnitCost          *decimal.Decimal `json:"unitCost"`
	LowStockThreshold *float64         `json:"lowStockThreshold"`
}

type PaymentRequest struct {
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	PaymentDate string          `json:"paymentDate"`
	Notes       string          `json:"notes"`
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, ErrSupplierNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrPurchaseNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidPurchase):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	slog.Error("supplier operation failed", "err", err)
	return fiber.NewError(fiber.StatusInternalServerError, "Supplier operation failed")
}

func findSupplier(tx *gorm.DB, id uint) (*models.Supplier, error) {
	var s models.Supplier
	if err := tx.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier %d: %w", id, ErrSupplierNotFound)
		}
		return nil, err
	}
	return &s, nil
}

// ---------- suppliers ----------

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if deref(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		s := models.Supplier{
			Name:        deref(body.Name),
			ContactName: deref(body.ContactName),
			Phone:       deref(body.Phone),
			Email:       deref(body.Email),
			Address:     deref(body.Address),
			Notes:       deref(body.Notes),
		}

		userID, email := audit.Actor(c)
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&s).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplier,
				EntityID:    s.ID,
				Action:      models.AuditActionCreate,
				Description: "Supplier created: " + s.Name,
				After:       s,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.Supplier
		err := database.DB.
			Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("name ASC") }).
			Order("name ASC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}
		return c.JSON(list)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}

		var s models.Supplier
		err = database.DB.
			Preload("Products").
			Preload("Products.Inventory").
			Preload("Purchases", func(tx *gorm.DB) *gorm.DB { return tx.Order("date_bought DESC") }).
			Preload("Purchases.Payments").
			First(&s, id).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}
		return c.JSON(s)
	}
}

// PATCH /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name != nil && deref(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
		}

		userID, email := audit.Actor(c)
		var updated models.Supplier
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			s, err := findSupplier(tx, id)
			if err != nil {
				return err
			}
			before := *s

			updates := map[string]interface{}{}
			set := func(col string, v *string) {
				if v != nil {
					updates[col] = strings.TrimSpace(*v)
				}
			}
			set("name", body.Name)
			set("contact_name", body.ContactName)
			set("phone", body.Phone)
			set("email", body.Email)
			set("address", body.Address)
			set("notes", body.Notes)
			if len(updates) > 0 {
				if err := tx.Model(s).Updates(updates).Error; err != nil {
					return err
				}
			}
			if err := tx.First(&updated, id).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplier,
				EntityID:    id,
				Action:      models.AuditActionUpdate,
				Description: "Supplier updated: " + updated.Name,
				Before:      before,
				After:       updated,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(updated)
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}

		userID, email := audit.Actor(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			s, err := findSupplier(tx, id)
			if err != nil {
				return err
			}

			var productIDs []uint
			if err := tx.Model(&models.SupplierProduct{}).Where("supplier_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
				return err
			}
			if err := deleteProductRows(tx, productIDs); err != nil {
				return err
			}
			if err := tx.Delete(s).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplier,
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: "Supplier deleted: " + s.Name,
				Before:      s,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"message": "Supplier deleted"})
	}
}

// ---------- supplier products ----------

// POST /api/suppliers/:supplierId/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := idParam(c, "supplierId")
		if err != nil {
			return err
		}
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if deref(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}
		if body.UnitCost == nil || body.UnitCost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "unitCost is required and cannot be negative")
		}

		p := models.SupplierProduct{
			SupplierID:        supplierID,
			Name:              deref(body.Name),
			Description:       deref(body.Description),
			UnitCost:          *body.UnitCost,
			LowStockThreshold: body.LowStockThreshold,
		}

		userID, email := audit.Actor(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if _, err := findSupplier(tx, supplierID); err != nil {
				return err
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplierProduct,
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: "Supplier product created: " + p.Name,
				After:       p,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/suppliers/:supplierId/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := idParam(c, "supplierId")
		if err != nil {
			return err
		}
		if _, err := findSupplier(database.DB, supplierID); err != nil {
			return toFiberError(err)
		}

		var list []models.SupplierProduct
		err = database.DB.Preload("Inventory").
			Where("supplier_id = ?", supplierID).
			Order("name ASC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(list)
	}
}

// PATCH /api/suppliers/products/:productId
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := idParam(c, "productId")
		if err != nil {
			return err
		}
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.UnitCost != nil && body.UnitCost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "unitCost cannot be negative")
		}

		userID, email := audit.Actor(c)
		var updated models.SupplierProduct
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var before models.SupplierProduct
			if err := tx.First(&before, productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
				}
				return err
			}

			updates := map[string]interface{}{}
			if body.Name != nil && deref(body.Name) != "" {
				updates["name"] = deref(body.Name)
			}
			if body.Description != nil {
				updates["description"] = deref(body.Description)
			}
			if body.UnitCost != nil {
				updates["unit_cost"] = *body.UnitCost
			}
			if body.LowStockThreshold != nil {
				updates["low_stock_threshold"] = *body.LowStockThreshold
			}
			if len(updates) > 0 {
				if err := tx.Model(&models.SupplierProduct{}).Where("id = ?", productID).Updates(updates).Error; err != nil {
					return err
				}
			}
			if err := tx.First(&updated, productID).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplierProduct,
				EntityID:    productID,
				Action:      models.AuditActionUpdate,
				Description: "Supplier product updated: " + updated.Name,
				Before:      before,
				After:       updated,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(updated)
	}
}

// DELETE /api/suppliers/products/:productId
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := idParam(c, "productId")
		if err != nil {
			return err
		}

		userID, email := audit.Actor(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var p models.SupplierProduct
			if err := tx.First(&p, productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
				}
				return err
			}
			if err := deleteProductRows(tx, []uint{productID}); err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      userID,
				UserEmail:   email,
				EntityType:  audit.EntitySupplierProduct,
				EntityID:    productID,
				Action:      models.AuditActionDelete,
				Description: "Supplier product deleted: " + p.Name,
				Before:      p,
			})
		})
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"message": "Product deleted"})
	}
}

// ---------- purchases & payments ----------

func purchaseQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("Product").Preload("Supplier").Preload("Payments")
}

// POST /api/suppliers/purchases
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PurchaseInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "productId is required")
		}

		var created *models.Purchase
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			p, err := RecordPurchase(tx, body)
			created = p
			return err
		})
		if err != nil {
			return toFiberError(err)
		}

		slog.Info("purchase recorded",
			"purchase_id", created.ID,
			"product_id", created.ProductID,
			"quantity", created.Quantity,
			"total", created.TotalPrice.String(),
		)
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// GET /api/suppliers/purchases?supplierId=1
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := purchaseQuery(database.DB)
		if sid := c.QueryInt("supplierId", 0); sid > 0 {
			q = q.Where("supplier_id = ?", sid)
		}

		var list []models.Purchase
		if err := q.Order("date_bought DESC, id DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		return c.JSON(list)
	}
}

// GET /api/suppliers/purchases/:id
func GetPurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var p models.Purchase
		if err := purchaseQuery(database.DB).First(&p, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Purchase not found")
		}
		return c.JSON(p)
	}
}

// POST /api/suppliers/purchases/:purchaseId/payments
func AddPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchaseID, err := idParam(c, "purchaseId")
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !body.AmountPaid.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "amountPaid must be positive")
		}

		paid := time.Now()
		if body.PaymentDate != "" {
			if paid, err = ParseDate(body.PaymentDate); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "paymentDate must be YYYY-MM-DD or RFC3339")
			}
		}

		var purchase models.Purchase
		if err := database.DB.First(&purchase, purchaseID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Purchase with ID %d not found", purchaseID))
		}

		payment := models.Payment{
			PurchaseID:  purchase.ID,
			AmountPaid:  body.AmountPaid,
			PaymentDate: paid,
			Notes:       strings.TrimSpace(body.Notes),
		}
		if err := database.DB.Create(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record payment")
		}
		return c.Status(fiber.StatusCreated).JSON(payment)
	}
}

// GET /api/suppliers/purchases/:purchaseId/payments
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchaseID, err := idParam(c, "purchaseId")
		if err != nil {
			return err
		}
		var list []models.Payment
		err = database.DB.Where("purchase_id = ?", purchaseID).
			Order("payment_date DESC, id DESC").
			Find(&list).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}
		return c.JSON(list)
	}
}

// ---------- reports ----------

// GET /api/suppliers/:id/balance
func BalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if _, err := findSupplier(database.DB, id); err != nil {
			return toFiberError(err)
		}

		var purchases []models.Purchase
		if err := database.DB.Preload("Payments").Where("supplier_id = ?", id).Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchases")
		}
		return c.JSON(BalanceOf(purchases))
	}
}

// GET /api/suppliers/:id/analytics
func AnalyticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if _, err := findSupplier(database.DB, id); err != nil {
			return toFiberError(err)
		}

		var purchases []models.Purchase
		err = database.DB.Preload("Product").Preload("Payments").
			Where("supplier_id = ?", id).
			Order("date_bought DESC, id DESC").
			Limit(analyticsWindow).
			Find(&purchases).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load purchases")
		}
		return c.JSON(AnalyticsOf(purchases))
	}
}
