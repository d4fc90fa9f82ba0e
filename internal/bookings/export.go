package bookings

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{
	"Booking ID", "Name", "Phone", "Studio", "Package", "Event Date",
	"Total (₹)", "Advance (₹)", "Remaining (₹)", "Status", "Payments", "Created",
}

// WriteWorkbook writes bookings as an XLSX sheet, one row per booking. Amounts are
// rupee numbers so the sheet can sum them.
func WriteWorkbook(w io.Writer, items []Booking) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return err
		}
	}
	header, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, header)
	}

	for i, b := range items {
		row := []any{
			b.ID.String(),
			b.Name,
			b.Phone,
			b.Studio.Label(),
			b.Package.Label(),
			b.EventDate.String(),
			b.Total.Decimal().InexactFloat64(),
			b.Advance.Decimal().InexactFloat64(),
			b.Remaining.Decimal().InexactFloat64(),
			string(b.Status),
			b.PaymentCount,
			b.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "F", 18)
	_ = f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f.Write(w)
}
