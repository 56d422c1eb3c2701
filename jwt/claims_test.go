package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestInspectReadsClaimsWithoutKey(t *testing.T) {
	m, _ := NewManager(Config{AccessTTL: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("server-only-secret")})
	token, _ := m.CreateAccess("u-9", "b@example.com", "passenger")

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.UserID != "u-9" || claims.Role != "passenger" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Expired(time.Now()) {
		t.Fatal("fresh token reported expired")
	}
	if !claims.Expired(time.Now().Add(2 * time.Hour)) {
		t.Fatal("expected token expired two hours from now")
	}
}

func TestInspectMalformed(t *testing.T) {
	for _, in := range []string{"", "tok-A", "a.b", "not.a.jwt"} {
		if _, err := Inspect(in); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Inspect(%q) = %v, want ErrMalformedToken", in, err)
		}
	}
}

func TestExpiryZeroWithoutExp(t *testing.T) {
	var c *AccessClaims
	if !c.Expiry().IsZero() || c.Expired(time.Now()) {
		t.Fatal("nil claims must have no expiry")
	}
}
