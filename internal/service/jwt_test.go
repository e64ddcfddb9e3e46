package service

import (
	"strings"
	"testing"
	"time"

	"github.com/streamhive/streamhive/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshExpiry: 7 * 24 * time.Hour,
	})
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateAccessToken(42, "jane@example.com", "jane", "Jane Doe")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "jane@example.com" {
		t.Errorf("Email = %s, want jane@example.com", claims.Email)
	}
	if claims.Username != "jane" {
		t.Errorf("Username = %s, want jane", claims.Username)
	}
	if claims.FullName != "Jane Doe" {
		t.Errorf("FullName = %s, want Jane Doe", claims.FullName)
	}
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateRefreshToken(7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessExpiry:  -1 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshExpiry: -1 * time.Minute,
	})

	accessToken, err := svc.GenerateAccessToken(1, "a@b.c", "a", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := svc.ValidateAccessToken(accessToken); err != ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}

	refreshToken, err := svc.GenerateRefreshToken(1)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	if _, err := svc.ValidateRefreshToken(refreshToken); err != ErrTokenExpired {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.GenerateAccessToken(1, "a@b.c", "a", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected 3 token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := svc.ValidateAccessToken(tampered); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestJWTService_SecretsAreDistinct(t *testing.T) {
	svc := newTestJWTService()

	refreshToken, err := svc.GenerateRefreshToken(9)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	// A refresh token must never validate as an access token.
	if _, err := svc.ValidateAccessToken(refreshToken); err == nil {
		t.Error("Expected refresh token to fail access validation")
	}

	accessToken, err := svc.GenerateAccessToken(9, "a@b.c", "a", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := svc.ValidateRefreshToken(accessToken); err == nil {
		t.Error("Expected access token to fail refresh validation")
	}
}

func TestJWTService_GarbageInput(t *testing.T) {
	svc := newTestJWTService()

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ValidateAccessToken(input); err != ErrTokenInvalid {
			t.Errorf("ValidateAccessToken(%q) = %v, want ErrTokenInvalid", input, err)
		}
	}
}
