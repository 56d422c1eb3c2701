package internal

import (
	"errors"
	"testing"
)

func TestRefreshTokenRotateKeepsFamily(t *testing.T) {
	first, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	next, err := first.Rotate()
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if next.Family != first.Family {
		t.Fatal("rotation must keep the family")
	}
	if next.Secret == first.Secret {
		t.Fatal("rotation must change the secret")
	}
	if next.Matches(first.Hash()) {
		t.Fatal("rotated token must not match the old hash")
	}
	if !first.Matches(first.Hash()) {
		t.Fatal("token must match its own hash")
	}
}

func TestParseRefreshTokenRejectsWrongSize(t *testing.T) {
	if _, err := ParseRefreshToken("dG9vLXNob3J0"); !errors.Is(err, ErrMalformedRefreshToken) {
		t.Fatalf("expected ErrMalformedRefreshToken, got %v", err)
	}
}
