package catalog

import (
	"errors"
	"log/slog"

	"furniture-backend/internal/database"
	"furniture-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := withAssociations(database.DB).Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		p, err := LoadProduct(database.DB, uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load product")
		}
		return c.JSON(p)
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var created *models.Product
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			p, err := CreateProduct(tx, body)
			if err != nil {
				return err
			}
			created, err = LoadProduct(tx, p.ID)
			return err
		})
		if err != nil {
			slog.Warn("create product failed", "name", body.Name, "err", err)
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PATCH /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var body ProductPatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var updated *models.Product
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var p models.Product
			if err := tx.First(&p, id).Error; err != nil {
				return err
			}
			if err := UpdateProduct(tx, &p, body); err != nil {
				return err
			}
			updated, err = LoadProduct(tx, p.ID)
			return err
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(updated)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product id")
		}

		var p models.Product
		if err := database.DB.First(&p, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var used int64
		database.DB.Model(&models.OrderItem{}).Where("product_id = ?", p.ID).Count(&used)
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Product is used by existing orders")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&p).Association("Sizes").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&p).Association("Fabrics").Clear(); err != nil {
				return err
			}
			return tx.Delete(&p).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
