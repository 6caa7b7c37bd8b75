// Package testdata generates demo inventories for large-table testing.
package testdata

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/gexx/gexx/internal/database/repository"
)

var (
	adjectives = []string{"Wireless", "Compact", "Ergonomic", "Deluxe", "Portable", "Classic", "Smart", "Recycled"}
	nouns      = []string{"Headphones", "Keyboard", "Lamp", "Notebook", "Mouse", "Hub", "Stand", "Organizer", "Charger", "Pencils"}
	categories = []string{"Electronics", "Home Office", "Stationery", "Books", "Toys & Games"}
	statuses   = []string{"active", "active", "active", "draft", "archived"}
)

// Seed inserts n random items into the team, prefixed with SKU "GEN".
// The same seed produces the same inventory.
func Seed(ctx context.Context, items *repository.ItemRepo, teamID string, n int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		qty := rng.Intn(60)
		if rng.Intn(8) == 0 {
			qty = 0
		}
		it := repository.Item{
			ID:         uuid.NewString(),
			TeamID:     teamID,
			SKU:        fmt.Sprintf("GEN%05d", i+1),
			Title:      adjectives[rng.Intn(len(adjectives))] + " " + nouns[rng.Intn(len(nouns))],
			Category:   categories[rng.Intn(len(categories))],
			PriceCents: int64(rng.Intn(20000) + 199),
			Quantity:   qty,
			Status:     statuses[rng.Intn(len(statuses))],
		}
		if err := items.Insert(ctx, it); err != nil {
			return fmt.Errorf("seed %s: %w", it.SKU, err)
		}
	}
	return nil
}
