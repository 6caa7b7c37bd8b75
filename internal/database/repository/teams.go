package repository

import (
	"context"
	"database/sql"
)

// Roles a member can hold.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// TeamRepo handles teams and memberships.
type TeamRepo struct {
	db DBTX
}

func NewTeamRepo(db DBTX) *TeamRepo { return &TeamRepo{db: db} }

func (r *TeamRepo) Create(ctx context.Context, t Team) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO teams(id, name, created_at, updated_at)
	VALUES(?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, t.ID, t.Name)
	return err
}

func (r *TeamRepo) AddMember(ctx context.Context, userID, teamID, role string) error {
	if role == "" {
		role = RoleMember
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO team_members(user_id, team_id, role, created_at, updated_at)
	VALUES(?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, team_id) DO UPDATE SET role=excluded.role, updated_at=CURRENT_TIMESTAMP;
	`, userID, teamID, role)
	return err
}

// TeamsForUser lists the user's memberships, oldest first.
func (r *TeamRepo) TeamsForUser(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT m.user_id, m.team_id, t.name, m.role
	FROM team_members m JOIN teams t ON t.id = m.team_id
	WHERE m.user_id = ?
	ORDER BY m.created_at, t.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UserID, &m.TeamID, &m.TeamName, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Membership returns the user's membership in team, or nil.
func (r *TeamRepo) Membership(ctx context.Context, userID, teamID string) (*Membership, error) {
	var m Membership
	err := r.db.QueryRowContext(ctx, `
	SELECT m.user_id, m.team_id, t.name, m.role
	FROM team_members m JOIN teams t ON t.id = m.team_id
	WHERE m.user_id = ? AND m.team_id = ?`, userID, teamID).Scan(&m.UserID, &m.TeamID, &m.TeamName, &m.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
