package orchestrators

import "log/slog"

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// ExecuteSignup applies the placeholder signup check: all fields
// non-empty and password at least MinPasswordLength. The session
// identity takes the submitted name and email; nothing is stored.
// POST: Returns the identity for session creation, or ErrInvalidSignup
func ExecuteSignup(input SignupInput) (Identity, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || len(input.Password) < MinPasswordLength {
		slog.Info("auth_event", "event", "signup_failed", "email", input.Email)
		return Identity{}, ErrInvalidSignup
	}

	slog.Info("auth_event", "event", "signup_success", "email", input.Email)
	return Identity{
		Name:  input.Name,
		Email: input.Email,
	}, nil
}
