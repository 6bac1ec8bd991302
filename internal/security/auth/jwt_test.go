package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", "", 0)

	token, err := tm.Issue("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user-123, got %s", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.Issuer != "calmly-list" {
		t.Errorf("expected default issuer, got %s", claims.Issuer)
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", "", 0)

	if _, err := tm.Issue("", "alice@example.com"); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Millisecond)

	token, err := tm.Issue("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := tm.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", "", 0)
	verifier := NewTokenManager("secret-two", "", 0)

	token, err := issuer.Issue("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "", 0)

	for _, garbage := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := tm.Verify(garbage); err == nil {
			t.Errorf("expected %q to be rejected", garbage)
		}
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	if err != nil {
		t.Fatalf("ExtractToken failed: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected abc123, got %s", token)
	}

	for _, bad := range []string{"", "abc123", "Basic abc123", "Bearer", "Bearer a b"} {
		if _, err := ExtractToken(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
