package cutting

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"furniture-backend/internal/models"

	"gorm.io/gorm"
)

type GormOrderStore struct {
	db *gorm.DB
}

func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) withItems(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("quantity > ?", 0).Order("id ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Size").
		Preload("Items.Fabric").
		Preload("Items.Color")
}

func (s *GormOrderStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.withItems(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return &order, nil
}

func (s *GormOrderStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.withItems(ctx).Order("due_date ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

type GormRuleStore struct {
	db *gorm.DB
}

func NewGormRuleStore(db *gorm.DB) *GormRuleStore {
	return &GormRuleStore{db: db}
}

func (s *GormRuleStore) ListRules(ctx context.Context, dept models.Department, kind models.ProductKind, sizes []models.SizeKey) ([]models.CuttingRule, error) {
	var rules []models.CuttingRule
	err := s.db.WithContext(ctx).
		Where("department = ? AND product_kind = ? AND size_key IN ?", dept, kind, sizes).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// MemoryRuleStore serves rules from a slice, typically DefaultRules().
type MemoryRuleStore struct {
	rules []models.CuttingRule
}

func NewMemoryRuleStore(rules []models.CuttingRule) *MemoryRuleStore {
	return &MemoryRuleStore{rules: rules}
}

func (s *MemoryRuleStore) ListRules(_ context.Context, dept models.Department, kind models.ProductKind, sizes []models.SizeKey) ([]models.CuttingRule, error) {
	var out []models.CuttingRule
	for _, r := range s.rules {
		if r.Department == dept && r.ProductKind == kind && slices.Contains(sizes, r.SizeKey) {
			out = append(out, r)
		}
	}
	return out, nil
}
