package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskiq/internal/config"
	"taskiq/internal/domain"
	"taskiq/internal/repo"
)

// DefaultUserEmail identifies the implicit local user CLI commands act as
// when no --email is given.
const DefaultUserEmail = "local@taskiq.dev"

// lockedPasswordHash marks accounts created by the CLI without a password.
// bcrypt never matches it, so these users cannot log in over HTTP until a
// password is set.
const lockedPasswordHash = "!"

// ResolveUser returns the user for the given email, creating a locked local
// account on first use so CLI commands work against a fresh workspace.
func ResolveUser(ctx context.Context, r repo.Repo, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = DefaultUserEmail
	}
	u, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	u = domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: lockedPasswordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	u, err = r.InsertUser(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("create local user %s: %w", email, err)
	}
	return u, nil
}

// LoadConfig reads taskiq.yml from the workspace, falling back to defaults.
func LoadConfig(workspace string) (*config.Config, error) {
	return config.Load(workspace)
}
