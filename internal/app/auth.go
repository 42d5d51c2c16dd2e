package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libraryapi/pkg/auth"
	"libraryapi/pkg/domain"
	"libraryapi/pkg/store"
)

// Register creates a new user and returns a fresh session.
//
// Username and email matching is case-sensitive exact match. The existence
// check is a best-effort pre-check for a friendly error; the store's unique
// constraints are the final arbiter, so a duplicate racing through the
// pre-check still resolves to ErrUserExists.
func (a *App) Register(username, email, password string) (domain.AuthSession, error) {
	if username == "" || email == "" || password == "" {
		return domain.AuthSession{}, ErrRegistrationFields
	}
	exists, err := a.store.HasUser(username, email)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return domain.AuthSession{}, ErrUserExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.CreateUser(domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrConflict) {
		return domain.AuthSession{}, ErrUserExists
	}
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "username", user.Username)

	return a.issueSession(user)
}

// Login authenticates by username or email. An unknown identifier and a
// wrong password are indistinguishable to the caller.
func (a *App) Login(usernameOrEmail, password string) (domain.AuthSession, error) {
	if usernameOrEmail == "" || password == "" {
		return domain.AuthSession{}, ErrLoginFields
	}
	user, ok, err := a.store.GetUserByIdentifier(usernameOrEmail)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.AuthSession{}, ErrInvalidCredentials
	}
	slog.Info("user logged in", "username", user.Username)

	return a.issueSession(user)
}

func (a *App) issueSession(user domain.User) (domain.AuthSession, error) {
	signed, expiresAt, err := a.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("issue token: %w", err)
	}
	return domain.AuthSession{
		Token:     signed,
		ExpiresAt: expiresAt,
		Username:  user.Username,
	}, nil
}
