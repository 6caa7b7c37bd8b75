package repository

import (
	"context"
	"database/sql"
)

// UserRepo handles users and their password hashes.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO users(id, name, email, created_at, updated_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, u.ID, u.Name, u.Email)
	return mapConstraint(err)
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, `SELECT id, name, email, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT id, name, email, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *UserRepo) one(ctx context.Context, query string, arg string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, u.Name, u.Email, u.ID)
	return mapConstraint(err)
}

// DeleteByEmail removes a user; passwords and memberships cascade.
func (r *UserRepo) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// PasswordHash returns the stored hash, or "" when the user has none.
func (r *UserRepo) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT hash FROM passwords WHERE user_id = ?`, userID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

func (r *UserRepo) SetPassword(ctx context.Context, id, userID, hash string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO passwords(id, user_id, hash, created_at, updated_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id) DO UPDATE SET hash=excluded.hash, updated_at=CURRENT_TIMESTAMP;
	`, id, userID, hash)
	return err
}
