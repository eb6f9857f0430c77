package orders

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"furniture-backend/internal/catalog"
	"furniture-backend/internal/database"
	"furniture-backend/internal/events"
	"furniture-backend/internal/metrics"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateOrderItemRequest struct {
	ProductID  uint   `json:"productId"`
	SizeName   string `json:"sizeName"`
	FabricName string `json:"fabricName"`
	ColorName  string `json:"colorName"`
	Quantity   int    `json:"quantity"`
}

type CreateOrderRequest struct {
	DueDate string                   `json:"dueDate"`
	Items   []CreateOrderItemRequest `json:"items"`
}

var errUnknownProduct = errors.New("unknown product")

func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

type Handler struct {
	pub events.Publisher
}

func NewHandler(pub events.Publisher) *Handler {
	return &Handler{pub: pub}
}

func withItems(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("quantity > ?", 0).Order("id ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Size").
		Preload("Items.Fabric").
		Preload("Items.Fabric.Colors").
		Preload("Items.Color")
}

// POST /api/orders
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		due, err := parseDueDate(body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "dueDate must be YYYY-MM-DD or RFC3339")
		}

		var order models.Order
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			order = models.Order{DueDate: due}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			for _, it := range body.Items {
				if it.Quantity <= 0 {
					continue
				}
				item, err := buildItem(tx, order.ID, it)
				if err != nil {
					return err
				}
				if err := tx.Create(item).Error; err != nil {
					return err
				}
			}
			return withItems(tx).First(&order, order.ID).Error
		})
		if err != nil {
			if errors.Is(err, errUnknownProduct) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			slog.Error("create order failed", "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create order")
		}

		metrics.OrderCreated()
		events.Emit(c.UserContext(), h.pub, events.NewOrderEvent(events.TopicOrderCreated, order.ID, order.DueDate, len(order.Items)))

		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

// buildItem resolves the item's size, fabric and color by name, creating
// any that are new.
func buildItem(tx *gorm.DB, orderID uint, it CreateOrderItemRequest) (*models.OrderItem, error) {
	var product models.Product
	if err := tx.First(&product, it.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w %d", errUnknownProduct, it.ProductID)
		}
		return nil, err
	}

	item := &models.OrderItem{OrderID: orderID, ProductID: product.ID, Quantity: it.Quantity}

	if name := strings.TrimSpace(it.SizeName); name != "" {
		size, err := catalog.EnsureSize(tx, name)
		if err != nil {
			return nil, err
		}
		item.SizeID = &size.ID
	}

	if name := strings.TrimSpace(it.FabricName); name != "" {
		fabric, err := catalog.EnsureFabric(tx, name, nil)
		if err != nil {
			return nil, err
		}
		item.FabricID = &fabric.ID

		if colorName := strings.TrimSpace(it.ColorName); colorName != "" {
			color, err := catalog.EnsureColor(tx, fabric.ID, colorName)
			if err != nil {
				return nil, err
			}
			item.ColorID = &color.ID
		}
	}

	return item, nil
}

// GET /api/orders
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orders []models.Order
		if err := withItems(database.DB).Order("due_date asc, id asc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}
		return c.JSON(orders)
	}
}

// GET /api/orders/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
		}

		var order models.Order
		if err := withItems(database.DB).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Order not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load order")
		}
		return c.JSON(order)
	}
}

// DELETE /api/orders/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
		}

		var order models.Order
		if err := database.DB.First(&order, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			slog.Error("delete order failed", "order_id", order.ID, "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete order")
		}

		events.Emit(c.UserContext(), h.pub, events.NewOrderEvent(events.TopicOrderDeleted, order.ID, order.DueDate, 0))
		return c.SendStatus(fiber.StatusNoContent)
	}
}
