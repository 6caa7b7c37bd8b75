package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// IngestService imports inventory from CSV files.
type IngestService struct {
	Inventory *InventoryService
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

var requiredImportColumns = []string{"sku", "title", "category", "quantity", "price"}

// ImportCSV reads a CSV with a header row. Required columns are sku, title,
// category, quantity and price; description, costPrice, vendor, weight,
// status and tags are optional. Status defaults to active. Rows whose SKU
// already exists are skipped; invalid rows are reported and skipped.
func (s *IngestService) ImportCSV(ctx context.Context, teamID string, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if err == io.EOF {
		return res, fmt.Errorf("import: empty file")
	}
	if err != nil {
		return res, fmt.Errorf("import header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredImportColumns {
		if _, ok := col[strings.ToLower(name)]; !ok {
			return res, fmt.Errorf("import: missing column %q", name)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		in := CreateItemInput{
			SKU:         field(rec, "sku"),
			Title:       field(rec, "title"),
			Description: field(rec, "description"),
			Category:    field(rec, "category"),
			Quantity:    field(rec, "quantity"),
			Price:       field(rec, "price"),
			CostPrice:   field(rec, "costPrice"),
			Vendor:      field(rec, "vendor"),
			Weight:      field(rec, "weight"),
			Status:      field(rec, "status"),
			Tags:        strings.ReplaceAll(field(rec, "tags"), ";", ","),
		}
		if strings.TrimSpace(in.Status) == "" {
			in.Status = StatusActive
		}
		if _, err := s.Inventory.Create(ctx, teamID, in); err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) && len(verrs) == 1 && verrs["sku"] == skuExistsMessage {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}
