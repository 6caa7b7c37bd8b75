package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupValidation(t *testing.T) {
	svc := newAuth(openTestDB(t), false)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "nope", Password: "short", ConfirmPassword: "other"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "Name is required", verrs["name"])
	require.Equal(t, "Invalid email address", verrs["email"])
	require.Equal(t, "Password must be at least 8 characters", verrs["password"])
	require.Equal(t, "Passwords don't match", verrs["confirmPassword"])

	_, err = svc.Signup(ctx, SignupInput{Name: "A", Email: "a@example.com", Password: "longenough"})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "Please confirm your password", verrs["confirmPassword"])
}

func TestSignupAndLogin(t *testing.T) {
	db := openTestDB(t)
	svc := newAuth(db, true)
	ctx := context.Background()

	acct, err := svc.Signup(ctx, SignupInput{
		Name: " Ada ", Email: "Ada@Example.com", Password: "correct horse", ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", acct.User.Name)
	require.Equal(t, "ada@example.com", acct.User.Email)
	require.Equal(t, "admin", acct.Team.Role)

	var items int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE team_id = ?`, acct.Team.TeamID).Scan(&items))
	require.Equal(t, 10, items)

	_, err = svc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", ConfirmPassword: "correct horse",
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, "email")

	got, err := svc.VerifyLogin(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, acct.User.ID, got.User.ID)
	require.Equal(t, acct.Team.TeamID, got.Team.TeamID)

	_, err = svc.VerifyLogin(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.VerifyLogin(ctx, LoginInput{Email: "bob@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	looked, err := svc.Lookup(ctx, acct.User.ID, "gone-team")
	require.NoError(t, err)
	require.Equal(t, acct.Team.TeamID, looked.Team.TeamID)
}

func TestLoginWithoutPassword(t *testing.T) {
	db := openTestDB(t)
	svc := newAuth(db, false)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `INSERT INTO users(id, name, email) VALUES('u1', 'X', 'x@example.com')`)
	require.NoError(t, err)

	_, err = svc.VerifyLogin(ctx, LoginInput{Email: "x@example.com", Password: "anything"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAndDeleteAccount(t *testing.T) {
	db := openTestDB(t)
	svc := newAuth(db, false)
	ctx := context.Background()
	acct, err := svc.Signup(ctx, SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, acct.User.ID, AccountInput{Name: "", Email: "bad"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)

	u, err := svc.UpdateAccount(ctx, acct.User.ID, AccountInput{Name: "Ada Lovelace", Email: "ada@lovelace.dev"})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", u.Name)

	gone, err := svc.DeleteUserByEmail(ctx, "ada@lovelace.dev")
	require.NoError(t, err)
	require.True(t, gone)

	_, err = svc.VerifyLogin(ctx, LoginInput{Email: "ada@lovelace.dev", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
