package service

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gexx/gexx/internal/datatable"
)

const exportSheet = "Inventory"

// ExportService writes table views to spreadsheets.
type ExportService struct{}

// WriteXLSX writes the engine's visible data columns and every row passing
// its filters, in display order, as an XLSX workbook. It returns the number
// of rows written.
func (ExportService) WriteXLSX(w io.Writer, e *datatable.Engine[InventoryRow]) (int, error) {
	p, rows := e.Snapshot()
	cols := e.Columns()
	byID := make(map[string]datatable.Column[InventoryRow], len(cols))
	for _, c := range cols {
		byID[c.ID] = c
	}
	var headers []datatable.Header
	for _, h := range p.VisibleHeaders() {
		if h.HasAccessor {
			headers = append(headers, h)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h.Title
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
			return 0, err
		}
	}

	for n, r := range rows {
		cells := make([]interface{}, len(headers))
		for i, h := range headers {
			v := byID[h.ColumnID].Accessor(r.Original)
			switch v.Kind {
			case datatable.KindNumber:
				cells[i] = v.Num
			case datatable.KindNull:
				cells[i] = nil
			default:
				cells[i] = v.String()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return 0, fmt.Errorf("write row %d: %w", n+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(rows), nil
}
