package service

import (
	"context"
	"sort"
)

// CategoryTotal is one bar of the dashboard's category chart.
type CategoryTotal struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
	Units    int    `json:"units"`
}

// Summary feeds the dashboard's section cards.
type Summary struct {
	TotalItems      int             `json:"totalItems"`
	TotalUnits      int             `json:"totalUnits"`
	StockValueCents int64           `json:"stockValueCents"`
	LowStock        int             `json:"lowStock"`
	OutOfStock      int             `json:"outOfStock"`
	Categories      []CategoryTotal `json:"categories"`
}

// DashboardService aggregates a team's inventory.
type DashboardService struct {
	Inventory *InventoryService
}

func (s *DashboardService) Summary(ctx context.Context, teamID string) (Summary, error) {
	rows, err := s.Inventory.List(ctx, teamID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}

// Summarize computes the dashboard figures for rows. Categories are ordered
// by units, then name.
func Summarize(rows []InventoryRow) Summary {
	var sum Summary
	byCat := map[string]*CategoryTotal{}
	for _, r := range rows {
		sum.TotalItems++
		sum.TotalUnits += r.Quantity
		sum.StockValueCents += int64(r.Quantity) * r.PriceCents
		switch r.Stock {
		case LowStock:
			sum.LowStock++
		case OutOfStock:
			sum.OutOfStock++
		}
		ct, ok := byCat[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category}
			byCat[r.Category] = ct
		}
		ct.Items++
		ct.Units += r.Quantity
	}
	for _, ct := range byCat {
		sum.Categories = append(sum.Categories, *ct)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.Category < b.Category
	})
	return sum
}
