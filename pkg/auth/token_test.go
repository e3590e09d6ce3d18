package auth

import (
	"testing"
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "cargochain",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now()
	signed, err := MintAccessToken(testJWTConfig(), now, AccessTokenPayload{
		UserID:   42,
		Username: "swift_logistics",
		Role:     enums.UserRoleLogistics,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig(), signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != enums.UserRoleLogistics {
		t.Fatalf("expected logistics role, got %s", claims.Role)
	}
	if claims.Issuer != "cargochain" {
		t.Fatalf("expected issuer, got %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	signed, err := MintAccessToken(testJWTConfig(), past, AccessTokenPayload{
		UserID:   1,
		Username: "expired",
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(testJWTConfig(), signed); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID:   1,
		Username: "shipper",
		Role:     enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := testJWTConfig()
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestMintValidatesPayload(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: 0,
		Role:   enums.UserRoleUser,
	}); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: 9,
		Role:   enums.UserRole("admin"),
	}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
