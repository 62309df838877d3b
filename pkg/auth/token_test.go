package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gudang",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:   42,
		Username: "budi",
		Role:     enums.UserRoleApprover,
		JTI:      "jti-42",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "budi" {
		t.Fatalf("unexpected identity %+v", claims)
	}
	if claims.Role != enums.UserRoleApprover {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "jti-42" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %v", got)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: 1, Role: enums.UserRoleStaff})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: 1, Role: "owner"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{Role: enums.UserRoleStaff}); err == nil {
		t.Fatal("expected missing user id error")
	}
	cfg := testJWTConfig()
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1, Role: enums.UserRoleStaff}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestParseAccessTokenRejectsExpiredAndTampered(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: 7, Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow expired parse: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected user id %d", claims.UserID)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessTokenAllowExpired(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := ParseAccessTokenAllowExpired(cfg, tampered); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 3, Role: enums.UserRoleStaff})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cfg.Issuer = "someone-else"
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}

func TestParseAccessTokenAllowExpiredStillChecksIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 5, Role: enums.UserRoleStaff})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cfg.Issuer = "another-warehouse"
	if _, err := ParseAccessTokenAllowExpired(cfg, token); err == nil {
		t.Fatal("expected issuer mismatch on expired token")
	}
}

func TestAccessTokenClaimsValidate(t *testing.T) {
	valid := AccessTokenClaims{UserID: 9, Role: enums.UserRoleAdmin}
	valid.Subject = "9"
	valid.ID = "jti-9"
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid claims, got %v", err)
	}

	mismatch := valid
	mismatch.Subject = "10"
	if err := mismatch.Validate(); err == nil {
		t.Fatal("expected subject mismatch")
	}

	noRole := valid
	noRole.Role = "owner"
	if err := noRole.Validate(); err == nil {
		t.Fatal("expected unknown role")
	}
}
