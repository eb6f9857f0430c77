package inventory

import (
	"errors"
	"fmt"
	"log/slog"

	"furniture-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrExists            = errors.New("inventory item already exists")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrInvalidOperation  = errors.New("operation must be add, subtract or set")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpSet      Operation = "set"
)

// Apply computes the new on-hand quantity. Subtract floors at zero; use
// Dispatch when running short must be an error instead.
func Apply(current, qty float64, op Operation) (float64, error) {
	if qty < 0 {
		return 0, ErrInvalidQuantity
	}
	switch op {
	case OpAdd:
		return current + qty, nil
	case OpSubtract:
		return max(0, current-qty), nil
	case OpSet, "":
		return qty, nil
	}
	return 0, ErrInvalidOperation
}

func itemFor(tx *gorm.DB, productID uint) (*models.Inventory, error) {
	var inv models.Inventory
	err := tx.Where("product_id = ?", productID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AddStock increases the on-hand quantity of a supplier product, creating
// its inventory row on first purchase.
func AddStock(tx *gorm.DB, productID uint, qty float64) (*models.Inventory, error) {
	res := tx.Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		inv := &models.Inventory{ProductID: productID, Quantity: qty}
		if err := tx.Create(inv).Error; err != nil {
			return nil, fmt.Errorf("create inventory for product %d: %w", productID, err)
		}
		return inv, nil
	}
	return itemFor(tx, productID)
}

func UpdateQuantity(tx *gorm.DB, productID uint, qty float64, op Operation) (before, after models.Inventory, err error) {
	inv, err := itemFor(tx, productID)
	if err != nil {
		return before, after, err
	}
	before = *inv

	next, err := Apply(inv.Quantity, qty, op)
	if err != nil {
		return before, after, err
	}
	inv.Quantity = next
	if err := tx.Model(inv).Update("quantity", next).Error; err != nil {
		return before, after, err
	}
	return before, *inv, nil
}

// Dispatch takes qty out of stock for production. Unlike a subtract it
// refuses to go below zero.
func Dispatch(tx *gorm.DB, productID uint, qty float64, reason string) (*models.Inventory, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	inv, err := itemFor(tx, productID)
	if err != nil {
		return nil, err
	}

	// the quantity guard in WHERE keeps concurrent dispatches from overdrawing
	res := tx.Model(&models.Inventory{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: available %g, requested %g", ErrInsufficientStock, inv.Quantity, qty)
	}
	inv.Quantity -= qty

	if reason == "" {
		reason = "no reason provided"
	}
	slog.Info("stock dispatched", "product_id", productID, "quantity", qty, "remaining", inv.Quantity, "reason", reason)
	return inv, nil
}

func Create(tx *gorm.DB, productID uint, initial float64) (*models.Inventory, error) {
	var product models.SupplierProduct
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	var count int64
	if err := tx.Model(&models.Inventory{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("product %d: %w", productID, ErrExists)
	}
	if initial < 0 {
		return nil, ErrInvalidQuantity
	}

	inv := &models.Inventory{ProductID: productID, Quantity: initial}
	if err := tx.Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// Threshold is the product's own low-stock level, or fallback when unset.
func Threshold(p *models.SupplierProduct, fallback float64) float64 {
	if p != nil && p.LowStockThreshold != nil {
		return *p.LowStockThreshold
	}
	return fallback
}

func IsLow(inv models.Inventory, fallback float64) bool {
	t := Threshold(inv.Product, fallback)
	return t > 0 && inv.Quantity < t
}
