package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/gudang-backend/internal/auth"
	pkgAuth "github.com/angelmondragon/gudang-backend/pkg/auth"
	"github.com/angelmondragon/gudang-backend/pkg/auth/session"
	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
)

type stubAuthService struct {
	lastLogin      auth.LoginRequest
	lastRevoked    string
	lastRefreshID  string
	lastRefreshTok string
	loginResp      *auth.LoginResponse
	pair           *auth.TokenPair
	err            error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastLogin = req
	return s.loginResp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessID, refreshToken string) (*auth.TokenPair, error) {
	s.lastRefreshID = accessID
	s.lastRefreshTok = refreshToken
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastRevoked = accessID
	return s.err
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, now time.Time) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(cfg, now, pkgAuth.AccessTokenPayload{
		UserID:   4,
		Username: "gudang",
		Role:     enums.UserRoleStaff,
		JTI:      accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthLogin(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"gudang","password":"secret123"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastLogin.Username != "gudang" {
		t.Fatalf("expected username forwarded, got %q", svc.lastLogin.Username)
	}
}

func TestAuthLoginRequiresPassword(t *testing.T) {
	svc := &stubAuthService{}
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"gudang"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	svc := &stubAuthService{}
	handler := AuthLogout(svc, cfg, nil)

	token, jti := mintTestToken(t, cfg, time.Now())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastRevoked != jti {
		t.Fatalf("expected revoked %s got %s", jti, svc.lastRevoked)
	}
}

func TestAuthLogoutWithoutToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	rec := httptest.NewRecorder()
	AuthLogout(&stubAuthService{}, cfg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshAcceptsExpiredAccessToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", TokenType: "Bearer"}}
	handler := AuthRefresh(svc, cfg, nil)

	token, jti := mintTestToken(t, cfg, time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{"refreshToken":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastRefreshID != jti || svc.lastRefreshTok != "old-refresh" {
		t.Fatalf("unexpected refresh args %s %s", svc.lastRefreshID, svc.lastRefreshTok)
	}
	var env struct {
		Data auth.TokenPair `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Data.RefreshToken != "new-refresh" {
		t.Fatalf("expected refresh token new-refresh got %s", env.Data.RefreshToken)
	}
}

func TestAuthRefreshInvalidRefreshToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")}

	token, _ := mintTestToken(t, cfg, time.Now())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{"refreshToken":"bad"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AuthRefresh(svc, cfg, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
