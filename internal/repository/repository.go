package repository

import (
	"context"

	"github.com/eldenfruit/storefront/internal/domain"
)

// Keys of the persisted storefront state.
const (
	// KeyCart holds the ordered list of cart line items.
	KeyCart = "cart"
	// KeyUser holds the signed-in user's public profile, absent when signed out.
	KeyUser = "user"
	// KeyUsers holds the registered-user table. It is owned by the
	// registration flow and never written by this service.
	KeyUsers = "users"
)

// KV is the key-value store all storefront state lives in.
type KV interface {
	// Get returns the value stored at key, or an error wrapping
	// errors.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// CartRepository persists the cart.
type CartRepository interface {
	// Load returns the stored cart, or an empty cart when none is stored.
	Load(ctx context.Context) (*domain.Cart, error)

	// Save overwrites the stored cart.
	Save(ctx context.Context, cart *domain.Cart) error
}

// UserRepository persists the signed-in user's profile.
type UserRepository interface {
	// Get returns the stored profile or an error wrapping errors.ErrNotFound.
	Get(ctx context.Context) (*domain.UserProfile, error)

	// Save stores the profile.
	Save(ctx context.Context, profile *domain.UserProfile) error

	// Delete removes the profile.
	Delete(ctx context.Context) error
}
