package store

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("token store unavailable")

// TokenStore persists the refresh token and the serialized user profile for one
// logged-in identity. Missing values load as empty, not as errors.
type TokenStore interface {
	LoadRefreshToken(ctx context.Context) (string, error)
	SaveRefreshToken(ctx context.Context, token string) error
	LoadUser(ctx context.Context) ([]byte, error)
	SaveUser(ctx context.Context, user []byte) error
	// Clear removes everything. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
