package cutting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders a slip as a single-sheet workbook: a header row and one
// row per piece. Irregular pieces (0x0) get empty dimension cells.
func WriteXLSX(slip *Slip, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Material", "Color", "Width (mm)", "Height (mm)", "Quantity", "Note"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range slip.Pieces {
		var width, height interface{} = p.Width, p.Height
		if p.Width == 0 && p.Height == 0 {
			width, height = "", ""
		}
		row := []interface{}{p.Material, p.Color, width, height, p.Quantity, p.Note}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "F", "F", 18); err != nil {
		return err
	}

	return f.Write(w)
}

// ExportFileName names the attachment for a slip.
func ExportFileName(slip *Slip) string {
	if slip.Scope.OrderID != nil {
		return fmt.Sprintf("%s_order_%d.xlsx", slip.Type, *slip.Scope.OrderID)
	}
	return fmt.Sprintf("%s_all_orders.xlsx", slip.Type)
}
