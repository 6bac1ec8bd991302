package service

import (
	"errors"
	"testing"
	"time"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/repository"
	"github.com/larsvasseldonk/calmly-list/internal/security/auth"
)

func newAuthService() *AuthService {
	tokens := auth.NewTokenManager("test-secret-key", "calmly-list-test", time.Minute)
	return NewAuthService(repository.NewMemoryUserRepository(), tokens, nil)
}

func TestRegister(t *testing.T) {
	svc := newAuthService()

	user, err := svc.Register("alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", user.Email)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.Register("alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register("alice@example.com", "other"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterRequiresEmailAndPassword(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.Register("", "s3cret"); err == nil {
		t.Error("expected error for empty email")
	}
	if _, err := svc.Register("alice@example.com", ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestLogin(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.Register("alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Login("alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected a token")
	}
	if result.TokenType != "bearer" {
		t.Errorf("expected token_type bearer, got %s", result.TokenType)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.Register("alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Login("alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService()

	// Unknown email and wrong password must be indistinguishable
	if _, err := svc.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginTokenCarriesIdentity(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-key", "calmly-list-test", time.Minute)
	svc := NewAuthService(repository.NewMemoryUserRepository(), tokens, nil)

	user, err := svc.Register("alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	result, err := svc.Login("alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := tokens.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user id %s does not match %s", claims.UserID, user.ID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("unexpected token email: %s", claims.Email)
	}
}
