package token

import (
	"strings"
	"testing"
	"time"

	"tutelliv/pkg/types"
)

var testUser = &types.User{
	ID:    "u-123",
	Email: "mjpm@example.com",
	Role:  types.RoleMJPM,
	Name:  "MJPM Demo",
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)

	raw, err := signer.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("expected compact JWS, got %q", raw)
	}

	claims, err := signer.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != testUser.ID {
		t.Errorf("UserID = %q, want %q", claims.UserID, testUser.ID)
	}
	if claims.Email != testUser.Email {
		t.Errorf("Email = %q, want %q", claims.Email, testUser.Email)
	}
	if claims.Role != types.RoleMJPM {
		t.Errorf("Role = %q, want %q", claims.Role, types.RoleMJPM)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := NewSigner("test-secret", -time.Minute)

	raw, err := signer.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := signer.Verify(raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewSigner("secret-a", time.Hour).Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewSigner("secret-b", time.Hour).Verify(raw); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer := NewSigner("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := signer.Verify(raw); err == nil {
			t.Errorf("Verify(%q): expected error", raw)
		}
	}
}
