// Package session answers "is anyone signed in" from the stored user profile.
// Sign-in here only records a profile; no credentials are checked.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/repository"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
	"github.com/eldenfruit/storefront/pkg/validator"
)

// Manager reads and writes the signed-in profile.
type Manager struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewManager creates a session manager.
func NewManager(users repository.UserRepository, logger *slog.Logger) *Manager {
	return &Manager{users: users, logger: logger}
}

// IsAuthenticated reports whether a profile is stored. Store errors are
// logged and treated as signed out.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, err := m.users.Get(ctx)
	if err == nil {
		return true
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		m.logger.WarnContext(ctx, "failed to read session, treating as signed out",
			slog.String("error", err.Error()),
		)
	}
	return false
}

// Current returns the signed-in profile.
func (m *Manager) Current(ctx context.Context) (*domain.UserProfile, error) {
	profile, err := m.users.Get(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.AuthRequired("no user is signed in")
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return profile, nil
}

// SignIn validates and stores profile as the signed-in user, replacing any
// previous one.
func (m *Manager) SignIn(ctx context.Context, profile domain.UserProfile) (*domain.UserProfile, error) {
	if err := validator.Validate(profile); err != nil {
		return nil, err
	}

	if err := m.users.Save(ctx, &profile); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	m.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", string(profile.ID)),
	)
	return &profile, nil
}

// SignOut removes the stored profile.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.users.Delete(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	m.logger.InfoContext(ctx, "user signed out")
	return nil
}

// CustomerID returns the id of the signed-in profile, or "" when nobody is
// signed in or the store cannot be read.
func (m *Manager) CustomerID(ctx context.Context) string {
	profile, err := m.users.Get(ctx)
	if err != nil {
		return ""
	}
	return string(profile.ID)
}
