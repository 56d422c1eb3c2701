package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

const (
	familyIDSize    = 16
	refreshSecretSz = 32
	refreshTokenRaw = familyIDSize + refreshSecretSz
)

// ErrMalformedRefreshToken is returned by ParseRefreshToken.
var ErrMalformedRefreshToken = errors.New("malformed refresh token")

// FamilyID identifies a login and every refresh token rotated from it.
type FamilyID [familyIDSize]byte

func (f FamilyID) String() string {
	return base64.RawURLEncoding.EncodeToString(f[:])
}

// RefreshToken is an opaque token: a family ID plus a random secret. Only the
// secret's hash is kept server side.
type RefreshToken struct {
	Family FamilyID
	Secret [refreshSecretSz]byte
}

// NewRefreshToken starts a new token family.
func NewRefreshToken() (RefreshToken, error) {
	var t RefreshToken
	if _, err := rand.Read(t.Family[:]); err != nil {
		return t, err
	}
	if _, err := rand.Read(t.Secret[:]); err != nil {
		return t, err
	}
	return t, nil
}

// Rotate returns a new token in the same family.
func (t RefreshToken) Rotate() (RefreshToken, error) {
	next := RefreshToken{Family: t.Family}
	_, err := rand.Read(next.Secret[:])
	return next, err
}

// Hash returns the value the server stores for t.
func (t RefreshToken) Hash() [32]byte {
	return sha256.Sum256(t.Secret[:])
}

// Matches compares t against a stored hash in constant time.
func (t RefreshToken) Matches(hash [32]byte) bool {
	h := t.Hash()
	return subtle.ConstantTimeCompare(h[:], hash[:]) == 1
}

// String encodes t as base64url without padding.
func (t RefreshToken) String() string {
	var raw [refreshTokenRaw]byte
	copy(raw[:familyIDSize], t.Family[:])
	copy(raw[familyIDSize:], t.Secret[:])
	return base64.RawURLEncoding.EncodeToString(raw[:])
}

// ParseRefreshToken decodes a token produced by String.
func ParseRefreshToken(s string) (RefreshToken, error) {
	var t RefreshToken
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) != refreshTokenRaw {
		return t, ErrMalformedRefreshToken
	}
	copy(t.Family[:], raw[:familyIDSize])
	copy(t.Secret[:], raw[familyIDSize:])
	return t, nil
}
