package invoice

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedItem is one line item read off a scanned invoice.
type ParsedItem struct {
	Name       string          `json:"name"`
	Quantity   float64         `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type ParsedInvoice struct {
	SupplierName  string           `json:"supplierName,omitempty"`
	Items         []ParsedItem     `json:"items"`
	TotalAmount   *decimal.Decimal `json:"totalAmount,omitempty"`
	Date          string           `json:"date,omitempty"`
	InvoiceNumber string           `json:"invoiceNumber,omitempty"`
}

var (
	supplierRe = regexp.MustCompile(`(?i)(?:supplier|company|from|bill to)[:\s]*([A-Za-z0-9\s&.,'-]+)`)
	dateRe     = regexp.MustCompile(`(?i)(?:date|invoice date)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})`)
	numberRe   = regexp.MustCompile(`(?i)(?:invoice|inv|#)[:\s]*([A-Z0-9\-]+)`)
	totalRe    = regexp.MustCompile(`(?i)(?:total|amount|due)[:\s]*\$?(\d+,?\d*\.?\d{2})`)

	// name qty unit-price total
	itemLineRe = regexp.MustCompile(`(?i)(.+?)\s+(\d+)\s+(\d+\.?\d*)\s+(\d+\.?\d*)`)
	// name qty x unit-price
	simpleItemRe = regexp.MustCompile(`(?i)(.+?)\s+(\d+)\s+x\s+(\d+\.?\d*)`)
	// last resort when nothing above matched a single item
	fallbackRe = regexp.MustCompile(`([A-Za-z\s]+?)(\d+)\s+(\d+\.?\d*)`)
)

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func newItem(name, qty, unit, total string) (ParsedItem, bool) {
	name = strings.TrimSpace(name)
	q, err := strconv.Atoi(qty)
	if err != nil || q <= 0 || name == "" {
		return ParsedItem{}, false
	}
	u, err := decimal.NewFromString(unit)
	if err != nil || !u.IsPositive() {
		return ParsedItem{}, false
	}

	t := u.Mul(decimal.NewFromInt(int64(q)))
	if total != "" {
		if parsed, err := decimal.NewFromString(total); err == nil {
			t = parsed
		}
	}
	return ParsedItem{Name: name, Quantity: float64(q), UnitPrice: u, TotalPrice: t}, true
}

// ParseOCRText pulls header fields and line items out of OCR'd invoice text.
// Each header field is taken from the first line that matches it; a line
// that yields a header field is not also read as an item.
func ParseOCRText(text string) ParsedInvoice {
	lines := splitLines(text)
	res := ParsedInvoice{Items: []ParsedItem{}}

	for _, line := range lines {
		if res.SupplierName == "" {
			if m := supplierRe.FindStringSubmatch(line); m != nil {
				res.SupplierName = strings.TrimSpace(m[1])
				continue
			}
		}
		if res.Date == "" {
			if m := dateRe.FindStringSubmatch(line); m != nil {
				res.Date = m[1]
				continue
			}
		}
		if res.InvoiceNumber == "" {
			if m := numberRe.FindStringSubmatch(line); m != nil {
				res.InvoiceNumber = m[1]
				continue
			}
		}
		if res.TotalAmount == nil {
			if m := totalRe.FindStringSubmatch(line); m != nil {
				if d, err := decimal.NewFromString(strings.Replace(m[1], ",", "", 1)); err == nil {
					res.TotalAmount = &d
					continue
				}
			}
		}

		if m := itemLineRe.FindStringSubmatch(line); m != nil {
			if it, ok := newItem(m[1], m[2], m[3], m[4]); ok {
				res.Items = append(res.Items, it)
			}
			continue
		}
		if m := simpleItemRe.FindStringSubmatch(line); m != nil {
			if it, ok := newItem(m[1], m[2], m[3], ""); ok {
				res.Items = append(res.Items, it)
			}
		}
	}

	if len(res.Items) == 0 {
		for _, line := range lines {
			if m := fallbackRe.FindStringSubmatch(line); m != nil {
				if it, ok := newItem(m[1], m[2], m[3], ""); ok {
					res.Items = append(res.Items, it)
				}
			}
		}
	}
	return res
}

var dateLayouts = []string{
	"2006-1-2", "2006/1/2", "2006.1.2",
	"1/2/2006", "1-2-2006", "1.2.2006",
	"1/2/06", "1-2-06", "1.2.06",
}

// PurchaseDate turns an invoice date as printed into a YYYY-MM-DD string.
// Numeric day/month dates are read month first.
func PurchaseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
