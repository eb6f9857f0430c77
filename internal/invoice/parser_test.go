package invoice

import (
	"testing"

	"furniture-backend/internal/models"
)

const sampleInvoice = `
ACME Fabrics Ltd
Supplier: ACME Fabrics Ltd
Invoice Date: 03/14/2025
Invoice: INV-2025-001

Velvet Black 10 12.50 125.00
Pine Plank 4 x 3.25
Total: $1,138.00
`

func TestParseOCRText(t *testing.T) {
	got := ParseOCRText(sampleInvoice)

	if got.SupplierName != "ACME Fabrics Ltd" {
		t.Errorf("SupplierName = %q", got.SupplierName)
	}
	if got.Date != "03/14/2025" {
		t.Errorf("Date = %q", got.Date)
	}
	if got.InvoiceNumber != "INV-2025-001" {
		t.Errorf("InvoiceNumber = %q", got.InvoiceNumber)
	}
	if got.TotalAmount == nil || got.TotalAmount.String() != "1138" {
		t.Errorf("TotalAmount = %v, want 1138", got.TotalAmount)
	}

	want := []struct {
		name  string
		qty   float64
		unit  string
		total string
	}{
		{"Velvet Black", 10, "12.5", "125"},
		{"Pine Plank", 4, "3.25", "13"},
	}
	if len(got.Items) != len(want) {
		t.Fatalf("items = %+v", got.Items)
	}
	for i, w := range want {
		it := got.Items[i]
		if it.Name != w.name || it.Quantity != w.qty || it.UnitPrice.String() != w.unit || it.TotalPrice.String() != w.total {
			t.Errorf("item %d = %+v, want %+v", i, it, w)
		}
	}
}

func TestParseOCRTextFallback(t *testing.T) {
	got := ParseOCRText("Foam sheet 5 20.5\nnothing here\n")
	if len(got.Items) != 1 {
		t.Fatalf("items = %+v", got.Items)
	}
	if it := got.Items[0]; it.Name != "Foam sheet" || it.Quantity != 5 || it.TotalPrice.String() != "102.5" {
		t.Errorf("item = %+v", it)
	}
}

func TestParseOCRTextSkipsInvalidItems(t *testing.T) {
	got := ParseOCRText("Returned 0 4.00 0.00\n")
	if len(got.Items) != 0 {
		t.Errorf("items = %+v, want none", got.Items)
	}
	if empty := ParseOCRText(""); empty.Items == nil {
		t.Error("Items is nil, want empty slice")
	}
}

func TestPurchaseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"03/14/2025", "2025-03-14", true},
		{"2025-03-14", "2025-03-14", true},
		{"2025.3.4", "2025-03-04", true},
		{"3-4-25", "2025-03-04", true},
		{"14/14/2025", "", false},
		{"soon", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := PurchaseDate(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("PurchaseDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatchProduct(t *testing.T) {
	products := []models.SupplierProduct{
		{ID: 1, Name: "Velvet"},
		{ID: 2, Name: "Velvet Black Premium"},
		{ID: 3, Name: "Pine"},
	}
	tests := []struct {
		name string
		want uint
	}{
		{"velvet", 1},
		{"Velvet Black", 2},
		{"Pine 33mm plank", 3},
		{"Oak", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchProduct(products, tt.name)
			var id uint
			if got != nil {
				id = got.ID
			}
			if id != tt.want {
				t.Errorf("matchProduct(%q) = %d, want %d", tt.name, id, tt.want)
			}
		})
	}
}

func TestMatchSuppliers(t *testing.T) {
	list := []models.Supplier{{ID: 1, Name: "ACME Fabrics"}, {ID: 2, Name: "North Timber"}}

	got := MatchSuppliers(list, "Invoice from ACME FABRICS, thanks")
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("match = %+v", got)
	}
	if got := MatchSuppliers(list, "timber"); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("partial = %+v", got)
	}
	if got := MatchSuppliers(list, "  "); len(got) != 0 {
		t.Errorf("blank = %+v", got)
	}
}
