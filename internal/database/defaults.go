package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gexx/gexx/internal/database/repository"
)

// DefaultCategories are offered by the create form before a team adds its own.
var DefaultCategories = []string{
	"Clothing",
	"Electronics",
	"Home & Kitchen",
	"Beauty & Personal Care",
	"Books",
	"Toys & Games",
	"Home Office",
	"Stationery",
}

type sampleItem struct {
	sku      string
	title    string
	category string
	quantity int
	cents    int64
}

var sampleItems = []sampleItem{
	{"INV001", "Wireless Headphones", "Electronics", 45, 8999},
	{"INV002", "Ergonomic Keyboard", "Electronics", 32, 12999},
	{"INV003", "Desk Lamp", "Home Office", 8, 3450},
	{"INV004", "Notebook Set", "Stationery", 0, 1299},
	{"INV005", "Wireless Mouse", "Electronics", 24, 4500},
	{"INV006", "USB-C Hub", "Electronics", 5, 5999},
	{"INV007", "Monitor Stand", "Home Office", 18, 7999},
	{"INV008", "Desk Organizer", "Home Office", 0, 2499},
	{"INV009", "Wireless Charger", "Electronics", 30, 3999},
	{"INV010", "Mechanical Pencils", "Stationery", 12, 899},
}

// SampleItemID derives the stable id of a seeded item.
func SampleItemID(teamID, sku string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("item:"+teamID+":"+sku)).String()
}

// SeedDefaults installs the sample inventory for a team. It is idempotent:
// items whose SKU already exists are left alone.
func SeedDefaults(ctx context.Context, db *sql.DB, teamID string) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		return SeedSampleInventory(ctx, tx, teamID)
	})
}

// SeedSampleInventory writes the sample items through an existing connection
// or transaction.
func SeedSampleInventory(ctx context.Context, db repository.DBTX, teamID string) error {
	items := repository.NewItemRepo(db)
	for _, s := range sampleItems {
		err := items.Insert(ctx, repository.Item{
			ID:         SampleItemID(teamID, s.sku),
			TeamID:     teamID,
			SKU:        s.sku,
			Title:      s.title,
			Category:   s.category,
			PriceCents: s.cents,
			Quantity:   s.quantity,
			Status:     "active",
		})
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.sku, err)
		}
	}
	return nil
}
