package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/datatable"
)

// ErrItemNotFound is returned for ids outside the team's inventory.
var ErrItemNotFound = errors.New("item not found")

// Lifecycle statuses accepted by the create form.
const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

var itemStatuses = []string{StatusActive, StatusDraft, StatusArchived}

const skuExistsMessage = "SKU already exists."

// StockStatus is derived from an item's quantity.
type StockStatus string

const (
	InStock    StockStatus = "in-stock"
	LowStock   StockStatus = "low-stock"
	OutOfStock StockStatus = "out-of-stock"
)

// StockStatusFor classifies qty against the low-stock threshold.
func StockStatusFor(qty, threshold int) StockStatus {
	switch {
	case qty <= 0:
		return OutOfStock
	case qty <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// InventoryRow is one row of the inventory table.
type InventoryRow struct {
	ID         string      `json:"id"`
	SKU        string      `json:"sku"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Vendor     string      `json:"vendor,omitempty"`
	Quantity   int         `json:"quantity"`
	PriceCents int64       `json:"priceCents"`
	Status     string      `json:"status"`
	Stock      StockStatus `json:"stock"`
	Tags       []string    `json:"tags,omitempty"`
}

// Price is the unit price in currency units.
func (r InventoryRow) Price() float64 { return float64(r.PriceCents) / 100 }

// CreateItemInput is the add-item form. Numeric fields arrive as text and
// are parsed during validation.
type CreateItemInput struct {
	Title       string `schema:"title"`
	Description string `schema:"description"`
	SKU         string `schema:"sku"`
	Price       string `schema:"price"`
	CostPrice   string `schema:"costPrice"`
	Quantity    string `schema:"quantity"`
	Category    string `schema:"category"`
	Vendor      string `schema:"vendor"`
	Weight      string `schema:"weight"`
	Status      string `schema:"status"`
	Tags        string `schema:"tags"`
	// Image is accepted from the form and discarded.
	Image string `schema:"image"`
}

// InventoryService manages a team's items.
type InventoryService struct {
	DB    *sql.DB
	Items *repository.ItemRepo
	// Categories lists the team's own categories; they are offered along
	// with database.DefaultCategories.
	Categories        func(teamID string) []string
	LowStockThreshold int
	Log               logrus.FieldLogger
}

var descriptionPolicy = bluemonday.StrictPolicy()

func (s *InventoryService) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s *InventoryService) sanitize(text string) string {
	// The policy escapes entities; store plain text and let templates escape.
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(text)))
}

// KnownCategories lists the categories the team may assign.
func (s *InventoryService) KnownCategories(teamID string) []string {
	if s.Categories == nil {
		return database.DefaultCategories
	}
	return MergeCategories(database.DefaultCategories, s.Categories(teamID))
}

// ParseTags splits a comma separated tag list, trimming entries and dropping
// empty and repeated ones.
func ParseTags(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// maxMoneyCents is the largest amount float64 still holds to the cent.
const maxMoneyCents = 1 << 53

func parseMoney(raw string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	cents := math.Round(f * 100)
	if cents > maxMoneyCents {
		return 0, false
	}
	return int64(cents), true
}

// validate checks the form and builds the item it describes.
func (s *InventoryService) validate(teamID string, in CreateItemInput) (repository.Item, []string, error) {
	errs := ValidationErrors{}
	it := repository.Item{
		Title:  strings.TrimSpace(in.Title),
		SKU:    strings.TrimSpace(in.SKU),
		Vendor: strings.TrimSpace(in.Vendor),
		Status: strings.ToLower(strings.TrimSpace(in.Status)),
	}
	it.Description = s.sanitize(in.Description)

	if len([]rune(it.Title)) < 2 {
		errs.add("title", "Product title must be at least 2 characters.")
	}
	if it.SKU == "" {
		errs.add("sku", "SKU is required.")
	}
	if cents, ok := parseMoney(in.Price); ok {
		it.PriceCents = cents
	} else {
		errs.add("price", "Price must be a positive number.")
	}
	if strings.TrimSpace(in.CostPrice) != "" {
		if cents, ok := parseMoney(in.CostPrice); ok {
			it.CostPriceCents = &cents
		} else {
			errs.add("costPrice", "Cost price must be a positive number.")
		}
	}
	if q, err := strconv.Atoi(strings.TrimSpace(in.Quantity)); err == nil && q >= 0 {
		it.Quantity = q
	} else {
		errs.add("quantity", "Quantity must be a positive integer.")
	}
	if cat, ok := MatchCategory(in.Category, s.KnownCategories(teamID)); ok {
		it.Category = cat
	} else {
		errs.add("category", "Please select a category.")
	}
	if strings.TrimSpace(in.Weight) != "" {
		w, err := strconv.ParseFloat(strings.TrimSpace(in.Weight), 64)
		if err != nil || w < 0 {
			errs.add("weight", "Weight must be a positive number.")
		} else {
			it.WeightKg = &w
		}
	}
	valid := false
	for _, st := range itemStatuses {
		valid = valid || st == it.Status
	}
	if !valid {
		errs.add("status", "Please select a status.")
	}
	return it, ParseTags(in.Tags), errs.orNil()
}

// Create validates the form and stores a new item with its tags.
func (s *InventoryService) Create(ctx context.Context, teamID string, in CreateItemInput) (repository.Item, error) {
	it, tags, err := s.validate(teamID, in)
	if err != nil {
		return repository.Item{}, err
	}
	it.ID = uuid.NewString()
	it.TeamID = teamID
	it.Tags = tags

	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		items := repository.NewItemRepo(tx)
		tagRepo := repository.NewTagRepo(tx)
		if err := items.Insert(ctx, it); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ValidationErrors{"sku": skuExistsMessage}
			}
			return fmt.Errorf("insert item: %w", err)
		}
		for _, name := range tags {
			tagID, err := tagRepo.Upsert(ctx, repository.Tag{ID: uuid.NewString(), Name: name})
			if err != nil {
				return fmt.Errorf("upsert tag %q: %w", name, err)
			}
			if err := items.AttachTag(ctx, it.ID, tagID); err != nil {
				return fmt.Errorf("attach tag %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return repository.Item{}, err
	}
	s.log().WithFields(logrus.Fields{"team": teamID, "sku": it.SKU}).Info("item created")
	return it, nil
}

// List returns the team's inventory as table rows ordered by SKU.
func (s *InventoryService) List(ctx context.Context, teamID string) ([]InventoryRow, error) {
	items, err := s.Items.List(ctx, repository.ItemFilters{TeamID: teamID})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]InventoryRow, len(items))
	for i, it := range items {
		out[i] = s.row(it)
	}
	return out, nil
}

func (s *InventoryService) row(it repository.Item) InventoryRow {
	return InventoryRow{
		ID:         it.ID,
		SKU:        it.SKU,
		Name:       it.Title,
		Category:   it.Category,
		Vendor:     it.Vendor,
		Quantity:   it.Quantity,
		PriceCents: it.PriceCents,
		Status:     it.Status,
		Stock:      StockStatusFor(it.Quantity, s.LowStockThreshold),
		Tags:       it.Tags,
	}
}

// UpdateStock sets an item's quantity.
func (s *InventoryService) UpdateStock(ctx context.Context, teamID, id string, qty int) error {
	if qty < 0 {
		return ValidationErrors{"quantity": "Quantity must be a positive integer."}
	}
	ok, err := s.Items.UpdateQuantity(ctx, teamID, id, qty)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// Delete removes the team's items with the given ids and reports how many
// were removed. Unknown ids are ignored.
func (s *InventoryService) Delete(ctx context.Context, teamID string, ids []string) (int64, error) {
	n, err := s.Items.DeleteMany(ctx, teamID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	s.log().WithFields(logrus.Fields{"team": teamID, "deleted": n}).Info("items deleted")
	return n, nil
}

// RowID identifies inventory rows in the table engine.
func RowID(r InventoryRow) string { return r.ID }

// Columns describes the inventory table.
func Columns() []datatable.Column[InventoryRow] {
	sku := datatable.Accessor("id", "SKU", func(r InventoryRow) datatable.Value { return datatable.String(r.SKU) })
	sku.DisableHiding = true

	name := datatable.Accessor("name", "Name", func(r InventoryRow) datatable.Value { return datatable.String(r.Name) })

	status := datatable.Accessor("status", "Status", func(r InventoryRow) datatable.Value { return datatable.String(string(r.Stock)) })
	status.Filter = datatable.FilterSet

	category := datatable.Accessor("category", "Category", func(r InventoryRow) datatable.Value { return datatable.String(r.Category) })
	category.Filter = datatable.FilterSet

	qty := datatable.Accessor("quantity", "Quantity", func(r InventoryRow) datatable.Value { return datatable.Int(int64(r.Quantity)) })
	qty.Filter = datatable.FilterRange
	qty.IsNumeric = true

	price := datatable.Accessor("price", "Price", func(r InventoryRow) datatable.Value { return datatable.Number(r.Price()) })
	price.Filter = datatable.FilterRange
	price.IsNumeric = true

	return []datatable.Column[InventoryRow]{
		datatable.Display[InventoryRow]("select"),
		sku,
		name,
		status,
		category,
		qty,
		price,
		datatable.Display[InventoryRow]("actions"),
	}
}

// NewTable builds a table engine over rows with the inventory columns.
func NewTable(rows []InventoryRow, pageSize int) (*datatable.Engine[InventoryRow], error) {
	return datatable.New(rows, Columns(), datatable.Options[InventoryRow]{RowID: RowID, PageSize: pageSize})
}
