package cutting

import (
	"cmp"
	"slices"
	"strings"

	"furniture-backend/internal/models"
)

// Piece is one cut shape and how many of it to cut. Pieces are derived on
// every request and never stored.
type Piece struct {
	Material string `json:"material"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
	Color    string `json:"color,omitempty"`

	ColorID *uint `json:"-"`
}

// Line is an order item flattened to what the resolver needs.
type Line struct {
	ProductName string
	Kind        models.ProductKind
	HasWingback bool
	SizeName    string
	FabricName  string // empty when the item has no fabric
	ColorName   string
	ColorID     *uint
	Quantity    int
}

// LineFromItem flattens an order item with its associations preloaded.
func LineFromItem(item models.OrderItem) Line {
	l := Line{Quantity: item.Quantity, ColorID: item.ColorID}
	if item.Product != nil {
		l.ProductName = item.Product.Name
		l.Kind = KindFor(item.Product)
		l.HasWingback = item.Product.HasWingback
	}
	if item.Size != nil {
		l.SizeName = item.Size.Name
	}
	if item.Fabric != nil {
		l.FabricName = item.Fabric.Name
	}
	if item.Color != nil {
		l.ColorName = item.Color.Name
	}
	return l
}

// SizeKeyFor maps a catalog size name onto a rule size key. The second
// result is false for sizes with no sized rules (King, or no size at all);
// those only pick up ANY rules.
func SizeKeyFor(sizeName string) (models.SizeKey, bool) {
	s := strings.ToLower(strings.TrimSpace(sizeName))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "queen"):
		return models.SizeQueen, true
	case strings.Contains(s, "double"):
		return models.SizeDouble, true
	case strings.Contains(s, "3/4"), strings.Contains(s, "three quarter"):
		return models.SizeThreeQuarter, true
	case strings.Contains(s, "single"):
		return models.SizeSingle, true
	}
	return "", false
}

// SizeKeysFor returns the keys to look rules up under: the item's own key
// (if any) followed by ANY.
func SizeKeysFor(sizeName string) []models.SizeKey {
	if key, ok := SizeKeyFor(sizeName); ok {
		return []models.SizeKey{key, models.SizeAny}
	}
	return []models.SizeKey{models.SizeAny}
}

// KindFor returns the product's cutting kind. An explicit kind wins;
// otherwise the name decides. Empty means the product has no rules.
func KindFor(p *models.Product) models.ProductKind {
	if p == nil {
		return ""
	}
	if p.Kind == models.KindBella || p.Kind == models.KindPanel {
		return p.Kind
	}
	name := strings.ToLower(p.Name)
	switch {
	case strings.Contains(name, "bella"):
		return models.KindBella
	case strings.Contains(name, "panel"):
		return models.KindPanel
	}
	return ""
}

// PiecesForLine renders the given rules for one line. rules must already be
// the ones that apply to the line; quantity is multiplied through and the
// fabric placeholder replaced for MATERIALS.
func PiecesForLine(dept models.Department, line Line, rules []models.CuttingRule) []Piece {
	if line.Quantity <= 0 {
		return nil
	}

	pieces := make([]Piece, 0, len(rules))
	for _, r := range rules {
		p := Piece{
			Material: r.Material,
			Width:    r.Width,
			Height:   r.Height,
			Quantity: r.QuantityPerUnit * line.Quantity,
			Note:     r.Note,
		}
		if dept == models.DeptMaterials && r.Material == VelvetPlaceholder && line.FabricName != "" {
			p.Material = line.FabricName
			p.Color = line.ColorName
			p.ColorID = line.ColorID
		}
		pieces = append(pieces, p)
	}
	return pieces
}

type mergeKey struct {
	material string
	width    int
	height   int
	note     string
	colorID  uint
	hasColor bool
}

func keyOf(p Piece) mergeKey {
	k := mergeKey{material: p.Material, width: p.Width, height: p.Height, note: p.Note}
	if p.ColorID != nil {
		k.colorID, k.hasColor = *p.ColorID, true
	}
	return k
}

// Merge sums the quantities of pieces that are the same cut: same material,
// dimensions, note and color. First-seen order is kept.
func Merge(pieces []Piece) []Piece {
	idx := make(map[mergeKey]int, len(pieces))
	out := make([]Piece, 0, len(pieces))
	for _, p := range pieces {
		k := keyOf(p)
		if i, ok := idx[k]; ok {
			out[i].Quantity += p.Quantity
			continue
		}
		idx[k] = len(out)
		out = append(out, p)
	}
	return out
}

// SortPieces orders by material, width, height, then note and color so the
// output is fully deterministic.
func SortPieces(pieces []Piece) {
	slices.SortStableFunc(pieces, func(a, b Piece) int {
		return cmp.Or(
			strings.Compare(a.Material, b.Material),
			cmp.Compare(a.Width, b.Width),
			cmp.Compare(a.Height, b.Height),
			strings.Compare(a.Note, b.Note),
			strings.Compare(a.Color, b.Color),
		)
	})
}
