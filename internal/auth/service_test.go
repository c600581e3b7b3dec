package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService("hunter2", &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Login("wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.Login("hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Operator != "admin" {
		t.Fatalf("expected admin operator, got %q", claims.Operator)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newTestService()
	other := NewService("hunter2", &JWTConfig{
		Secret:   []byte("a-different-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})

	token, err := other.Login("hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure for foreign secret")
	}
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("s"), Issuer: "other", Audience: "test", TTL: time.Hour}
	token, err := GenerateToken(cfg, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	validateCfg := &JWTConfig{Secret: []byte("s"), Issuer: "test", Audience: "test", TTL: time.Hour}
	if _, err := ValidateToken(validateCfg, token); err == nil {
		t.Fatalf("expected issuer validation failure")
	}
}
