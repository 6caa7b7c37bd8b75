package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/logging"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateDB(db, migrations))
	return db
}

func testLogger() *logrus.Logger { return logging.Discard() }

func newAuth(db *sql.DB, seed bool) *AuthService {
	return &AuthService{
		DB:         db,
		Users:      repository.NewUserRepo(db),
		Teams:      repository.NewTeamRepo(db),
		SeedSample: seed,
		Log:        testLogger(),
	}
}

func newInventory(db *sql.DB) *InventoryService {
	return &InventoryService{
		DB:                db,
		Items:             repository.NewItemRepo(db),
		LowStockThreshold: 15,
		Log:               testLogger(),
	}
}

// signupTeam creates an account and returns its team id.
func signupTeam(t *testing.T, db *sql.DB, seed bool) string {
	t.Helper()
	acct, err := newAuth(db, seed).Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)
	return acct.Team.TeamID
}
