// Package export renders product analytics as spreadsheet downloads.
package export

import (
	"fmt"
	"io"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the analytics rows
const SheetName = "Product Analytics"

// XLSXContentType is the MIME type of the workbook
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of the sheet, in column order
var Header = []string{"External ID", "Title", "Status", "Image URL", "GMV", "Items Sold", "Orders"}

var columnWidths = map[string]float64{"A": 22, "B": 48, "C": 10, "D": 40, "E": 14, "F": 12, "G": 10}

// numFmtTwoDecimals is the built-in "0.00" format
const numFmtTwoDecimals = 2

// FileName returns the attachment name for a shop's range export
func FileName(shopID, startDate, endDate string) string {
	return fmt.Sprintf("product-analytics_%s_%s_%s.xlsx", shopID, startDate, endDate)
}

// WriteProductAnalytics writes rows as a one-sheet workbook to w
func WriteProductAnalytics(w io.Writer, rows []domain.ProductAnalytics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	gmvStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return fmt.Errorf("create gmv style: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.ExternalID, r.Title, r.Status.String(), r.ImageURL, r.GMVFloat(), r.ItemsSold, r.OrdersCount}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("E%d", len(rows)+1)
		if err := f.SetCellStyle(SheetName, "E2", last, gmvStyle); err != nil {
			return fmt.Errorf("style gmv column: %w", err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set width of %s: %w", col, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
