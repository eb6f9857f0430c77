package suppliers

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"furniture-backend/internal/inventory"
	"furniture-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	analyticsWindow   = 50
	topProductsLimit  = 5
	recentActivityMax = 10
)

var (
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrProductNotFound  = errors.New("supplier product not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrInvalidPurchase  = errors.New("invalid purchase")
)

type PurchaseInput struct {
	ProductID  uint            `json:"productId"`
	SupplierID uint            `json:"supplierId"`
	Quantity   float64         `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	DateBought string          `json:"dateBought"`
	LastsUntil string          `json:"lastsUntil"`
}

// ParseDate accepts RFC3339 or a plain YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// RecordPurchase stores a purchase and adds its quantity to stock. Run it in
// a transaction; both writes must land together.
func RecordPurchase(tx *gorm.DB, in PurchaseInput) (*models.Purchase, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidPurchase)
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidPurchase)
	}

	var product models.SupplierProduct
	if err := tx.First(&product, in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", in.ProductID, ErrProductNotFound)
		}
		return nil, err
	}
	if in.SupplierID == 0 {
		in.SupplierID = product.SupplierID
	}
	if in.SupplierID != product.SupplierID {
		return nil, fmt.Errorf("%w: product %d is not sold by supplier %d", ErrInvalidPurchase, product.ID, in.SupplierID)
	}

	bought := time.Now()
	if in.DateBought != "" {
		t, err := ParseDate(in.DateBought)
		if err != nil {
			return nil, fmt.Errorf("%w: dateBought %q", ErrInvalidPurchase, in.DateBought)
		}
		bought = t
	}
	var lasts *time.Time
	if in.LastsUntil != "" {
		t, err := ParseDate(in.LastsUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: lastsUntil %q", ErrInvalidPurchase, in.LastsUntil)
		}
		lasts = &t
	}

	p := models.Purchase{
		ProductID:  product.ID,
		SupplierID: in.SupplierID,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		TotalPrice: in.UnitPrice.Mul(decimal.NewFromFloat(in.Quantity)).Round(2),
		DateBought: bought,
		LastsUntil: lasts,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	if _, err := inventory.AddStock(tx, product.ID, in.Quantity); err != nil {
		return nil, fmt.Errorf("add stock: %w", err)
	}

	p.Product = &product
	return &p, nil
}

type Balance struct {
	TotalPurchased decimal.Decimal `json:"totalPurchased"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	BalanceOwed    decimal.Decimal `json:"balanceOwed"`
}

// BalanceOf needs Payments loaded on each purchase.
func BalanceOf(purchases []models.Purchase) Balance {
	b := Balance{TotalPurchased: decimal.Zero, TotalPaid: decimal.Zero}
	for _, p := range purchases {
		b.TotalPurchased = b.TotalPurchased.Add(p.TotalPrice)
		for _, pay := range p.Payments {
			b.TotalPaid = b.TotalPaid.Add(pay.AmountPaid)
		}
	}
	b.BalanceOwed = b.TotalPurchased.Sub(b.TotalPaid)
	return b
}

type ProductTotal struct {
	ProductName string          `json:"productName"`
	Quantity    float64         `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

type Analytics struct {
	TotalOrders       int               `json:"totalOrders"`
	TotalValue        decimal.Decimal   `json:"totalValue"`
	AverageOrderValue decimal.Decimal   `json:"averageOrderValue"`
	TopProducts       []ProductTotal    `json:"topProducts"`
	RecentActivity    []models.Purchase `json:"recentActivity"`
}

// AnalyticsOf expects purchases newest first with Product loaded.
func AnalyticsOf(purchases []models.Purchase) Analytics {
	a := Analytics{
		TotalOrders:       len(purchases),
		TotalValue:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	byName := make(map[string]*ProductTotal)
	var names []string
	for _, p := range purchases {
		a.TotalValue = a.TotalValue.Add(p.TotalPrice)

		name := ""
		if p.Product != nil {
			name = p.Product.Name
		}
		pt, ok := byName[name]
		if !ok {
			pt = &ProductTotal{ProductName: name, Value: decimal.Zero}
			byName[name] = pt
			names = append(names, name)
		}
		pt.Quantity += p.Quantity
		pt.Value = pt.Value.Add(p.TotalPrice)
	}
	if a.TotalOrders > 0 {
		a.AverageOrderValue = a.TotalValue.Div(decimal.NewFromInt(int64(a.TotalOrders))).Round(2)
	}

	a.TopProducts = make([]ProductTotal, 0, len(names))
	for _, n := range names {
		a.TopProducts = append(a.TopProducts, *byName[n])
	}
	slices.SortStableFunc(a.TopProducts, func(x, y ProductTotal) int {
		return cmp.Or(y.Value.Cmp(x.Value), strings.Compare(x.ProductName, y.ProductName))
	})
	if len(a.TopProducts) > topProductsLimit {
		a.TopProducts = a.TopProducts[:topProductsLimit]
	}

	a.RecentActivity = purchases[:min(len(purchases), recentActivityMax)]
	return a
}

// deleteProductRows removes a supplier product with its stock, purchases and
// payments. SQLite does not enforce the cascade constraints, so do it here.
func deleteProductRows(tx *gorm.DB, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	purchases := tx.Model(&models.Purchase{}).Select("id").Where("product_id IN ?", productIDs)
	if err := tx.Where("purchase_id IN (?)", purchases).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Purchase{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Inventory{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", productIDs).Delete(&models.SupplierProduct{}).Error
}
