package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eldenfruit/storefront/internal/domain"
)

// UserStore implements UserRepository over a KV store, under KeyUser.
type UserStore struct {
	kv KV
}

// NewUserStore creates a user profile store.
func NewUserStore(kv KV) *UserStore {
	return &UserStore{kv: kv}
}

// Get reads the stored profile.
func (s *UserStore) Get(ctx context.Context) (*domain.UserProfile, error) {
	data, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}

	return &profile, nil
}

// Save stores the profile.
func (s *UserStore) Save(ctx context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	if err := s.kv.Set(ctx, KeyUser, data); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return nil
}

// Delete removes the profile.
func (s *UserStore) Delete(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
