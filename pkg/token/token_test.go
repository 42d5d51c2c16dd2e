package token

import (
	"strings"
	"testing"
	"time"
)

func newTestAuthority(t *testing.T, cfg Config) *Authority {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	a, err := NewAuthority(cfg)
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	return a
}

func TestNewAuthorityRequiresSecret(t *testing.T) {
	if _, err := NewAuthority(Config{}); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
	if _, err := NewAuthority(Config{Secret: "   "}); err == nil {
		t.Fatalf("expected blank secret to fail")
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	a := newTestAuthority(t, Config{})

	signed, expiresAt, err := a.Issue(42, "harper", "harper@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 23*time.Hour {
		t.Fatalf("expected ~24h lifetime, got %v", remaining)
	}

	claims, err := a.Validate(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if userID != 42 {
		t.Fatalf("user id mismatch: got %d want 42", userID)
	}
	if claims.Username != "harper" || claims.Email != "harper@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := newTestAuthority(t, Config{TTL: -time.Minute, Leeway: time.Millisecond})

	signed, _, err := a.Issue(1, "u", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.Validate(signed); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	a := newTestAuthority(t, Config{})

	signed, _, err := a.Issue(1, "u", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	last := signed[len(signed)-1]
	flip := "A"
	if last == 'A' {
		flip = "B"
	}
	tampered := signed[:len(signed)-1] + flip
	if _, err := a.Validate(tampered); err == nil {
		t.Fatalf("expected tampered token to fail validation")
	}
}

func TestValidateRejectsTamperedClaims(t *testing.T) {
	a := newTestAuthority(t, Config{})

	signed, _, err := a.Issue(1, "u", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	other, _, err := a.Issue(2, "other", "other@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	otherParts := strings.Split(other, ".")
	spliced := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := a.Validate(spliced); err == nil {
		t.Fatalf("expected claim-swapped token to fail validation")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signing := newTestAuthority(t, Config{Secret: "secret-a"})
	verifying := newTestAuthority(t, Config{Secret: "secret-b"})

	signed, _, err := signing.Issue(1, "u", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifying.Validate(signed); err == nil {
		t.Fatalf("expected wrong-secret token to fail validation")
	}
}

func TestValidateEnforcesIssuerAndAudience(t *testing.T) {
	signing := newTestAuthority(t, Config{Issuer: "issuer-a", Audience: "aud-a"})

	wrongIssuer := newTestAuthority(t, Config{Issuer: "issuer-b", Audience: "aud-a"})
	wrongAudience := newTestAuthority(t, Config{Issuer: "issuer-a", Audience: "aud-b"})

	signed, _, err := signing.Issue(1, "u", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := wrongIssuer.Validate(signed); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
	if _, err := wrongAudience.Validate(signed); err == nil {
		t.Fatalf("expected audience mismatch to fail")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	a := newTestAuthority(t, Config{})
	for _, tok := range []string{"", "   ", "not.a.jwt", "a.b"} {
		if _, err := a.Validate(tok); err == nil {
			t.Fatalf("expected %q to fail validation", tok)
		}
	}
}
