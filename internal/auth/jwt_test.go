package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(42, "hana")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Username != "hana" {
		t.Errorf("username = %q, want %q", claims.Username, "hana")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", time.Hour)
	m2 := NewJWTManager("secret-two", time.Hour)

	token, err := m1.Generate(1, "hana")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := m2.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate(1, "hana")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestJWTGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	if _, err := m.Validate("not a token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
