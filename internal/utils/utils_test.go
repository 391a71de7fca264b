package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", Claims{UserID: 17, Role: "SCORER", Name: "Pat Cummins"}, 15)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(tok.Exp) > 15*time.Minute || time.Until(tok.Exp) < 14*time.Minute {
		t.Errorf("unexpected expiry %v", tok.Exp)
	}
	c, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != 17 || c.Role != "SCORER" || c.Name != "Pat Cummins" {
		t.Errorf("unexpected claims %+v", c)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	good, _ := NewAccessToken("s3cret", Claims{UserID: 1, Role: "ADMIN"}, 5)
	expired, _ := NewAccessToken("s3cret", Claims{UserID: 1, Role: "ADMIN"}, -5)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "ADMIN"}).SignedString([]byte("s3cret"))

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "s3cret", expired.Token},
		{"unsigned", "s3cret", none},
		{"no subject", "s3cret", noSub},
		{"garbage", "s3cret", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.secret, tt.raw); err == nil {
				t.Errorf("expected rejection")
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, _ := NewRefreshToken(7)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Errorf("expected distinct 96 char tokens, got %q and %q", a.Raw, b.Raw)
	}
	h := HashRefreshRaw(a.Raw)
	if len(h) != 64 || h != HashRefreshRaw(a.Raw) || strings.Contains(h, a.Raw) {
		t.Errorf("unexpected hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("over-the-wicket", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "over-the-wicket") {
		t.Errorf("expected password to verify")
	}
	if VerifyPassword(hash, "round-the-wicket") {
		t.Errorf("wrong password verified")
	}
}
