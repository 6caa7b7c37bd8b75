package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gexx/gexx/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"item_tags",
			"items",
			"tags",
			"team_members",
			"teams",
			"passwords",
			"users",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// ResetTeam removes one team's inventory and drops tags nothing uses anymore.
func (s *MaintenanceService) ResetTeam(ctx context.Context, teamID string) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE team_id = ?`, teamID); err != nil {
			return fmt.Errorf("reset items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id NOT IN (SELECT tag_id FROM item_tags)`); err != nil {
			return fmt.Errorf("prune tags: %w", err)
		}
		return nil
	})
}
