package repository

import (
	"context"
	"database/sql"
)

// TagRepo handles tags.
type TagRepo struct {
	db DBTX
}

func NewTagRepo(db DBTX) *TagRepo { return &TagRepo{db: db} }

// Upsert stores t, keyed by name. It returns the id of the stored tag, which
// differs from t.ID when a tag with that name already existed.
func (r *TagRepo) Upsert(ctx context.Context, t Tag) (string, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags(id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
		return "", err
	}
	existing, err := r.ByName(ctx, t.Name)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", sql.ErrNoRows
	}
	return existing.ID, nil
}

func (r *TagRepo) ByName(ctx context.Context, name string) (*Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name)
	var t Tag
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
