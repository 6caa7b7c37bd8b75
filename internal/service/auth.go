package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
)

// InvalidCredentialsMessage is shown for every failed login.
const InvalidCredentialsMessage = "Credentials are invalid."

var (
	// ErrInvalidCredentials covers unknown emails, users without a password
	// and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoTeam is returned when a user belongs to no team.
	ErrNoTeam = errors.New("user has no team")
)

const bcryptCost = 10

// SignupInput is the signup form.
type SignupInput struct {
	Name            string `schema:"name"`
	Email           string `schema:"email"`
	Password        string `schema:"password"`
	ConfirmPassword string `schema:"confirmPassword"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
}

// AccountInput is the account settings form.
type AccountInput struct {
	Name  string `schema:"name" json:"name"`
	Email string `schema:"email" json:"email"`
}

// Account is a signed-in user together with the team they act for.
type Account struct {
	User repository.User
	Team repository.Membership
}

// AuthService creates and verifies accounts.
type AuthService struct {
	DB    *sql.DB
	Users *repository.UserRepo
	Teams *repository.TeamRepo
	// SeedSample installs the sample inventory into new personal teams.
	SeedSample bool
	Log        logrus.FieldLogger
}

func (s *AuthService) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in SignupInput) validate() error {
	errs := ValidationErrors{}
	if in.Name == "" {
		errs.add("name", "Name is required")
	}
	if !validEmail(in.Email) {
		errs.add("email", "Invalid email address")
	}
	if len(in.Password) < 8 {
		errs.add("password", "Password must be at least 8 characters")
	}
	if in.ConfirmPassword == "" {
		errs.add("confirmPassword", "Please confirm your password")
	} else if in.Password != in.ConfirmPassword {
		errs.add("confirmPassword", "Passwords don't match")
	}
	return errs.orNil()
}

// Signup creates the user, their password and a personal team in one
// transaction and returns the new account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (Account, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return Account{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	acct := Account{
		User: repository.User{ID: uuid.NewString(), Name: in.Name, Email: in.Email},
	}
	team := repository.Team{ID: uuid.NewString(), Name: in.Name + "'s team"}
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		users := repository.NewUserRepo(tx)
		teams := repository.NewTeamRepo(tx)
		if err := users.Create(ctx, acct.User); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ValidationErrors{"email": "An account with this email already exists"}
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := users.SetPassword(ctx, uuid.NewString(), acct.User.ID, string(hash)); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		if err := teams.Create(ctx, team); err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		if err := teams.AddMember(ctx, acct.User.ID, team.ID, repository.RoleAdmin); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		if s.SeedSample {
			return database.SeedSampleInventory(ctx, tx, team.ID)
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	acct.Team = repository.Membership{UserID: acct.User.ID, TeamID: team.ID, TeamName: team.Name, Role: repository.RoleAdmin}
	s.log().WithFields(logrus.Fields{"user": acct.User.ID, "team": team.ID}).Info("account created")
	return acct, nil
}

// VerifyLogin checks the credentials and resolves the user's first team.
func (s *AuthService) VerifyLogin(ctx context.Context, in LoginInput) (Account, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if u == nil {
		return Account{}, ErrInvalidCredentials
	}
	hash, err := s.Users.PasswordHash(ctx, u.ID)
	if err != nil {
		return Account{}, err
	}
	if hash == "" {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return s.account(ctx, *u)
}

// Lookup reloads the account of a session. A user who lost their membership
// in teamID falls back to their first team.
func (s *AuthService) Lookup(ctx context.Context, userID, teamID string) (Account, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	if u == nil {
		return Account{}, ErrInvalidCredentials
	}
	if teamID != "" {
		m, err := s.Teams.Membership(ctx, userID, teamID)
		if err != nil {
			return Account{}, err
		}
		if m != nil {
			return Account{User: *u, Team: *m}, nil
		}
	}
	return s.account(ctx, *u)
}

func (s *AuthService) account(ctx context.Context, u repository.User) (Account, error) {
	ms, err := s.Teams.TeamsForUser(ctx, u.ID)
	if err != nil {
		return Account{}, err
	}
	if len(ms) == 0 {
		return Account{}, ErrNoTeam
	}
	return Account{User: u, Team: ms[0]}, nil
}

// UpdateAccount changes the user's name and email.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, in AccountInput) (repository.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	errs := ValidationErrors{}
	if in.Name == "" {
		errs.add("name", "Name is required")
	}
	if !validEmail(in.Email) {
		errs.add("email", "Invalid email address")
	}
	if err := errs.orNil(); err != nil {
		return repository.User{}, err
	}
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return repository.User{}, err
	}
	if u == nil {
		return repository.User{}, ErrInvalidCredentials
	}
	u.Name, u.Email = in.Name, in.Email
	if err := s.Users.Update(ctx, *u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return repository.User{}, ValidationErrors{"email": "An account with this email already exists"}
		}
		return repository.User{}, err
	}
	return *u, nil
}

// DeleteUserByEmail removes a user. Their password and memberships cascade.
func (s *AuthService) DeleteUserByEmail(ctx context.Context, email string) (bool, error) {
	return s.Users.DeleteByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
