package orchestrators

import (
	"errors"
	"log/slog"
)

// MinPasswordLength is the only credential rule the placeholder check
// enforces.
const MinPasswordLength = 6

// placeholderDisplayName is the fixed display name for logins. There is
// no account database; credential validation is cosmetic.
const placeholderDisplayName = "Admin User"

var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidSignup      = errors.New("Invalid signup data")
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// Identity is the session identity established by login or signup.
type Identity struct {
	Name  string
	Email string
}

// ExecuteLogin applies the placeholder credential check: email and
// password non-empty and password at least MinPasswordLength. The
// display name is a fixed placeholder, not looked up anywhere.
// POST: Returns the identity for session creation, or ErrInvalidCredentials
func ExecuteLogin(input LoginInput) (Identity, error) {
	if input.Email == "" || input.Password == "" || len(input.Password) < MinPasswordLength {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email)
		return Identity{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "email", input.Email)
	return Identity{
		Name:  placeholderDisplayName,
		Email: input.Email,
	}, nil
}
