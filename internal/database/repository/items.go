package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ItemFilters narrows ItemRepo.List. TeamID is required.
type ItemFilters struct {
	TeamID   string
	Category string
	Status   string
	Search   string
}

// ItemRepo handles inventory items.
type ItemRepo struct {
	db DBTX
}

func NewItemRepo(db DBTX) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, team_id, sku, title, description, category, vendor, price_cents,
	cost_price_cents, quantity, weight_kg, status, created_at, updated_at`

func (r *ItemRepo) Insert(ctx context.Context, it Item) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO items(
	 id, team_id, sku, title, description, category, vendor, price_cents,
	 cost_price_cents, quantity, weight_kg, status, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		it.ID, it.TeamID, it.SKU, it.Title, it.Description, it.Category, it.Vendor, it.PriceCents,
		it.CostPriceCents, it.Quantity, it.WeightKg, it.Status)
	return mapConstraint(err)
}

func (r *ItemRepo) Update(ctx context.Context, it Item) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE items SET sku = ?, title = ?, description = ?, category = ?, vendor = ?, price_cents = ?,
	 cost_price_cents = ?, quantity = ?, weight_kg = ?, status = ?, updated_at=CURRENT_TIMESTAMP
	WHERE id = ? AND team_id = ?`,
		it.SKU, it.Title, it.Description, it.Category, it.Vendor, it.PriceCents,
		it.CostPriceCents, it.Quantity, it.WeightKg, it.Status, it.ID, it.TeamID)
	return mapConstraint(err)
}

// Get returns the team's item with id, or nil.
func (r *ItemRepo) Get(ctx context.Context, teamID, id string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE team_id = ? AND id = ?`, teamID, id)
	it, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	tags, err := r.Tags(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Tags = tags
	return &it, nil
}

func (r *ItemRepo) List(ctx context.Context, f ItemFilters) ([]Item, error) {
	where := []string{"team_id = ?"}
	args := []interface{}{f.TeamID}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(sku) LIKE ?)")
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE ` + strings.Join(where, " AND ") + ` ORDER BY sku`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := r.teamTags(ctx, f.TeamID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = tags[out[i].ID]
	}
	return out, nil
}

func (r *ItemRepo) UpdateQuantity(ctx context.Context, teamID, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE items SET quantity = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ? AND team_id = ?`, qty, id, teamID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ItemRepo) Delete(ctx context.Context, teamID, id string) error {
	_, err := r.DeleteMany(ctx, teamID, []string{id})
	return err
}

// DeleteMany removes the team's items with the given ids and reports how many went.
func (r *ItemRepo) DeleteMany(ctx context.Context, teamID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, teamID)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE team_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ItemRepo) AttachTag(ctx context.Context, itemID, tagID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO item_tags(item_id, tag_id) VALUES(?, ?)`, itemID, tagID)
	return err
}

// Tags returns the item's tag names in name order.
func (r *ItemRepo) Tags(ctx context.Context, itemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.name FROM item_tags it JOIN tags t ON t.id = it.tag_id
	WHERE it.item_id = ? ORDER BY t.name`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *ItemRepo) teamTags(ctx context.Context, teamID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT it.item_id, t.name
	FROM item_tags it
	JOIN tags t ON t.id = it.tag_id
	JOIN items i ON i.id = it.item_id
	WHERE i.team_id = ?
	ORDER BY t.name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var itemID, name string
		if err := rows.Scan(&itemID, &name); err != nil {
			return nil, err
		}
		out[itemID] = append(out[itemID], name)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (Item, error) {
	var it Item
	var cost sql.NullInt64
	var weight sql.NullFloat64
	err := s.Scan(&it.ID, &it.TeamID, &it.SKU, &it.Title, &it.Description, &it.Category, &it.Vendor,
		&it.PriceCents, &cost, &it.Quantity, &weight, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	if cost.Valid {
		v := cost.Int64
		it.CostPriceCents = &v
	}
	if weight.Valid {
		v := weight.Float64
		it.WeightKg = &v
	}
	return it, nil
}
