package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"furniture-backend/internal/models"

	"gorm.io/gorm"
)

var ErrInvalidKind = errors.New("product kind must be BELLA or PANEL")

type FabricInput struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

// FabricsInput accepts either {"Velvet": ["Black", ...]} or
// [{"name": "Velvet", "colors": ["Black", ...]}].
type FabricsInput []FabricInput

func (f *FabricsInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var list []FabricInput
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*f = list
		return nil
	}

	var byName map[string][]string
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("fabrics must be an object or an array: %w", err)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(FabricsInput, 0, len(names))
	for _, name := range names {
		out = append(out, FabricInput{Name: name, Colors: byName[name]})
	}
	*f = out
	return nil
}

type ProductInput struct {
	Name        string             `json:"name"`
	Kind        models.ProductKind `json:"kind"`
	HasWingback bool               `json:"hasWingback"`
	Sizes       []string           `json:"sizes"`
	Fabrics     FabricsInput       `json:"fabrics"`
}

func validKind(k models.ProductKind) bool {
	return k == "" || k == models.KindBella || k == models.KindPanel
}

// EnsureSize returns the size with the given name, creating it if needed.
func EnsureSize(tx *gorm.DB, name string) (*models.Size, error) {
	size := models.Size{Name: strings.TrimSpace(name)}
	if size.Name == "" {
		return nil, errors.New("size name is empty")
	}
	if err := tx.Where(models.Size{Name: size.Name}).FirstOrCreate(&size).Error; err != nil {
		return nil, fmt.Errorf("ensure size %q: %w", size.Name, err)
	}
	return &size, nil
}

// EnsureFabric returns the fabric with the given name, creating it and any
// missing colors.
func EnsureFabric(tx *gorm.DB, name string, colors []string) (*models.Fabric, error) {
	fabric := models.Fabric{Name: strings.TrimSpace(name)}
	if fabric.Name == "" {
		return nil, errors.New("fabric name is empty")
	}
	if err := tx.Where(models.Fabric{Name: fabric.Name}).FirstOrCreate(&fabric).Error; err != nil {
		return nil, fmt.Errorf("ensure fabric %q: %w", fabric.Name, err)
	}
	for _, c := range colors {
		if _, err := EnsureColor(tx, fabric.ID, c); err != nil {
			return nil, err
		}
	}
	return &fabric, nil
}

func EnsureColor(tx *gorm.DB, fabricID uint, name string) (*models.Color, error) {
	color := models.Color{Name: strings.TrimSpace(name), FabricID: fabricID}
	if color.Name == "" {
		return nil, errors.New("color name is empty")
	}
	if err := tx.Where(models.Color{Name: color.Name, FabricID: fabricID}).FirstOrCreate(&color).Error; err != nil {
		return nil, fmt.Errorf("ensure color %q: %w", color.Name, err)
	}
	return &color, nil
}

func ensureSizes(tx *gorm.DB, names []string) ([]models.Size, error) {
	sizes := make([]models.Size, 0, len(names))
	for _, n := range names {
		s, err := EnsureSize(tx, n)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, *s)
	}
	return sizes, nil
}

func ensureFabrics(tx *gorm.DB, in FabricsInput) ([]models.Fabric, error) {
	fabrics := make([]models.Fabric, 0, len(in))
	for _, f := range in {
		fabric, err := EnsureFabric(tx, f.Name, f.Colors)
		if err != nil {
			return nil, err
		}
		fabrics = append(fabrics, *fabric)
	}
	return fabrics, nil
}

// CreateProduct stores a new product and links its sizes and fabrics,
// creating any that do not exist yet.
func CreateProduct(tx *gorm.DB, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.New("product name is required")
	}
	if !validKind(in.Kind) {
		return nil, ErrInvalidKind
	}

	sizes, err := ensureSizes(tx, in.Sizes)
	if err != nil {
		return nil, err
	}
	fabrics, err := ensureFabrics(tx, in.Fabrics)
	if err != nil {
		return nil, err
	}

	p := models.Product{
		Name:        in.Name,
		Kind:        in.Kind,
		HasWingback: in.HasWingback,
		Sizes:       sizes,
		Fabrics:     fabrics,
	}
	if err := tx.Omit("Sizes.*", "Fabrics.*").Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create product %q: %w", in.Name, err)
	}
	return &p, nil
}

// EnsureProduct is CreateProduct for seeding: an existing product of the same
// name only gets missing sizes, fabrics and colors linked.
func EnsureProduct(tx *gorm.DB, in ProductInput) (*models.Product, error) {
	var existing models.Product
	err := tx.Where("name = ?", strings.TrimSpace(in.Name)).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateProduct(tx, in)
	}
	if err != nil {
		return nil, err
	}

	sizes, err := ensureSizes(tx, in.Sizes)
	if err != nil {
		return nil, err
	}
	fabrics, err := ensureFabrics(tx, in.Fabrics)
	if err != nil {
		return nil, err
	}
	if len(sizes) > 0 {
		if err := tx.Model(&existing).Omit("Sizes.*").Association("Sizes").Append(sizes); err != nil {
			return nil, err
		}
	}
	if len(fabrics) > 0 {
		if err := tx.Model(&existing).Omit("Fabrics.*").Association("Fabrics").Append(fabrics); err != nil {
			return nil, err
		}
	}
	return &existing, nil
}

// ProductPatch holds the fields of a partial update; nil means unchanged.
type ProductPatch struct {
	Name        *string             `json:"name"`
	Kind        *models.ProductKind `json:"kind"`
	HasWingback *bool               `json:"hasWingback"`
	Sizes       []string            `json:"sizes"`
	Fabrics     FabricsInput        `json:"fabrics"`
}

// UpdateProduct applies patch. Sizes and fabrics, when given, replace the
// current links.
func UpdateProduct(tx *gorm.DB, p *models.Product, patch ProductPatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return errors.New("product name cannot be empty")
		}
		updates["name"] = name
	}
	if patch.Kind != nil {
		if !validKind(*patch.Kind) {
			return ErrInvalidKind
		}
		updates["kind"] = *patch.Kind
	}
	if patch.HasWingback != nil {
		updates["has_wingback"] = *patch.HasWingback
	}
	if len(updates) > 0 {
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return fmt.Errorf("update product %d: %w", p.ID, err)
		}
	}

	if patch.Sizes != nil {
		sizes, err := ensureSizes(tx, patch.Sizes)
		if err != nil {
			return err
		}
		if err := tx.Model(p).Omit("Sizes.*").Association("Sizes").Replace(sizes); err != nil {
			return err
		}
	}
	if patch.Fabrics != nil {
		fabrics, err := ensureFabrics(tx, patch.Fabrics)
		if err != nil {
			return err
		}
		if err := tx.Model(p).Omit("Fabrics.*").Association("Fabrics").Replace(fabrics); err != nil {
			return err
		}
	}
	return nil
}

// LoadProduct returns a product with sizes and fabric colors.
func LoadProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := withAssociations(tx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func withAssociations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Sizes").Preload("Fabrics").Preload("Fabrics.Colors")
}

var velvetColors = []string{
	"Dark grey", "Light grey", "Black", "Brown", "Taupe", "Gold", "Cream", "Biscuit", "Emerald green",
	"Olive green", "Royal blue", "Cyan", "Baby pink", "Cerise pink", "Scarlet", "Lilac", "Orange", "Burnt orange",
}

// DefaultProducts is the catalog a fresh installation starts with.
func DefaultProducts() []ProductInput {
	headboardSizes := []string{"Queen", "Double", "3/4", "Single"}
	allSizes := []string{"King", "Queen", "Double", "3/4", "Single"}
	headboardFabrics := FabricsInput{
		{Name: "Velvet", Colors: velvetColors},
		{Name: "BOUCLE", Colors: []string{"Black", "Dark grey", "Light grey"}},
	}

	return []ProductInput{
		{Name: "Bella Headboard", Kind: models.KindBella, Sizes: headboardSizes, Fabrics: headboardFabrics},
		{Name: "Bella Wingback Headboard", Kind: models.KindBella, HasWingback: true, Sizes: headboardSizes, Fabrics: headboardFabrics},
		{Name: "Panel Headboard", Kind: models.KindPanel, Sizes: headboardSizes, Fabrics: headboardFabrics},
		{Name: "Panel Wingback Headboard", Kind: models.KindPanel, HasWingback: true, Sizes: headboardSizes, Fabrics: headboardFabrics},
		{Name: "zeus", Sizes: allSizes, Fabrics: FabricsInput{{Name: "Linen", Colors: []string{"Black", "Brown", "Grey", "Sand"}}}},
		{Name: "zuka", Sizes: allSizes, Fabrics: FabricsInput{{Name: "Leather", Colors: []string{"black", "brown"}}}},
	}
}
