package cutting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"furniture-backend/internal/models"
)

var ErrNotFound = errors.New("cutting slip not found")

type SlipType string

const (
	FabricSlip SlipType = "FABRIC_CUTTING_SLIP"
	WoodSlip   SlipType = "WOOD_CUTTING_SLIP"
	FoamSlip   SlipType = "FOAM_CUTTING_SLIP"
)

// SlipTypeFor returns the slip type of a cutting department.
func SlipTypeFor(dept models.Department) (SlipType, bool) {
	switch dept {
	case models.DeptMaterials:
		return FabricSlip, true
	case models.DeptWood:
		return WoodSlip, true
	case models.DeptFoam:
		return FoamSlip, true
	}
	return "", false
}

type Scope struct {
	OrderID   *uint      `json:"orderId,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	AllOrders bool       `json:"allOrders,omitempty"`
}

type Slip struct {
	Department models.Department `json:"department"`
	Type       SlipType          `json:"type"`
	Scope      Scope             `json:"scope"`
	Pieces     []Piece           `json:"pieces"`
	ReadOnly   bool              `json:"readOnly"`
}

// OrderStore returns orders with their quantity > 0 items and the item
// associations loaded.
type OrderStore interface {
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

type RuleStore interface {
	ListRules(ctx context.Context, dept models.Department, kind models.ProductKind, sizes []models.SizeKey) ([]models.CuttingRule, error)
}

type Service struct {
	orders OrderStore
	rules  RuleStore
}

func NewService(orders OrderStore, rules RuleStore) *Service {
	return &Service{orders: orders, rules: rules}
}

// OrderSlip computes the slip of one order. ErrNotFound covers both a
// missing order and an order that has nothing to cut in dept.
func (s *Service) OrderSlip(ctx context.Context, dept models.Department, orderID uint) (*Slip, error) {
	slipType, ok := SlipTypeFor(dept)
	if !ok {
		return nil, fmt.Errorf("department %s has no cutting slip: %w", dept, ErrNotFound)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	pieces, err := s.piecesFor(ctx, dept, []models.Order{*order}, newRuleCache())
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("order %d has nothing to cut in %s: %w", orderID, dept, ErrNotFound)
	}

	due := order.DueDate
	id := order.ID
	return &Slip{
		Department: dept,
		Type:       slipType,
		Scope:      Scope{OrderID: &id, DueDate: &due},
		Pieces:     pieces,
		ReadOnly:   true,
	}, nil
}

// AggregateSlip sums identical pieces across every order. An empty slip is
// a valid result.
func (s *Service) AggregateSlip(ctx context.Context, dept models.Department) (*Slip, error) {
	slipType, ok := SlipTypeFor(dept)
	if !ok {
		return nil, fmt.Errorf("department %s has no cutting slip: %w", dept, ErrNotFound)
	}

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	pieces, err := s.piecesFor(ctx, dept, orders, newRuleCache())
	if err != nil {
		return nil, err
	}

	return &Slip{
		Department: dept,
		Type:       slipType,
		Scope:      Scope{AllOrders: true},
		Pieces:     pieces,
		ReadOnly:   true,
	}, nil
}

func (s *Service) piecesFor(ctx context.Context, dept models.Department, orders []models.Order, cache ruleCache) ([]Piece, error) {
	var all []Piece
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				continue
			}
			line := LineFromItem(item)
			rules, err := s.rulesFor(ctx, dept, line, cache)
			if err != nil {
				return nil, err
			}
			all = append(all, PiecesForLine(dept, line, rules)...)
		}
	}

	out := Merge(all)
	SortPieces(out)
	return out, nil
}

type ruleCacheKey struct {
	kind models.ProductKind
	size models.SizeKey
}

type ruleCache map[ruleCacheKey][]models.CuttingRule

func newRuleCache() ruleCache { return make(ruleCache) }

func (s *Service) lookup(ctx context.Context, dept models.Department, kind models.ProductKind, sizes []models.SizeKey, cache ruleCache) ([]models.CuttingRule, error) {
	key := ruleCacheKey{kind: kind, size: sizes[0]}
	if rules, ok := cache[key]; ok {
		return rules, nil
	}
	rules, err := s.rules.ListRules(ctx, dept, kind, sizes)
	if err != nil {
		return nil, fmt.Errorf("list %s %s rules: %w", dept, kind, err)
	}
	cache[key] = rules
	return rules, nil
}

// rulesFor gathers the base-kind rules for the line's size and ANY, plus the
// WINGBACK add-on when the product carries one.
func (s *Service) rulesFor(ctx context.Context, dept models.Department, line Line, cache ruleCache) ([]models.CuttingRule, error) {
	if line.Kind == "" {
		return nil, nil
	}

	base, err := s.lookup(ctx, dept, line.Kind, SizeKeysFor(line.SizeName), cache)
	if err != nil {
		return nil, err
	}
	if !line.HasWingback {
		return base, nil
	}

	wing, err := s.lookup(ctx, dept, models.KindWingback, []models.SizeKey{models.SizeAny}, cache)
	if err != nil {
		return nil, err
	}
	rules := make([]models.CuttingRule, 0, len(base)+len(wing))
	rules = append(rules, base...)
	return append(rules, wing...), nil
}
