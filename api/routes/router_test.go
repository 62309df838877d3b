package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gudang-backend/internal/auth"
	"github.com/angelmondragon/gudang-backend/internal/categories"
	"github.com/angelmondragon/gudang-backend/internal/goodsin"
	"github.com/angelmondragon/gudang-backend/internal/goodsout"
	"github.com/angelmondragon/gudang-backend/internal/items"
	"github.com/angelmondragon/gudang-backend/internal/ledger"
	"github.com/angelmondragon/gudang-backend/internal/users"
	pkgAuth "github.com/angelmondragon/gudang-backend/pkg/auth"
	"github.com/angelmondragon/gudang-backend/pkg/auth/session"
	"github.com/angelmondragon/gudang-backend/pkg/config"
	pkgdb "github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"github.com/angelmondragon/gudang-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/gudang-backend/pkg/redis"
	"github.com/angelmondragon/gudang-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	handler  http.Handler
	sessions *session.Manager
	cfg      *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn := dbtest.Open(t)
	client := pkgdb.NewFromGorm(conn)

	mr := miniredis.RunT(t)
	redisClient := pkgredis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		JWT: config.JWTConfig{
			Secret:                 "router-secret",
			Issuer:                 "gudang",
			ExpirationMinutes:      15,
			RefreshTokenTTLMinutes: 60,
		},
		Password: testPasswordConfig,
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginUsernameLimit: 5,
			LoginIPLimit:       20,
		},
		HTTPRateLimit: config.HTTPRateLimitConfig{Requests: 1000, Window: time.Minute},
		Idempotency:   config.IdempotencyConfig{TTL: time.Hour},
	}

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	require.NoError(t, err)

	userRepo := users.NewRepository(conn)
	userSvc, err := users.NewService(userRepo, client, sessions, cfg.Password)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)
	categorySvc, err := categories.NewService(categories.NewRepository(conn), client)
	require.NoError(t, err)
	itemSvc, err := items.NewService(items.NewRepository(conn), client)
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	goodsInSvc, err := goodsin.NewService(goodsin.NewRepository(conn), ledgerSvc, client)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	goodsOutSvc, err := goodsout.NewService(goodsout.NewRepository(conn), ledgerSvc, client, metrics.NewApprovalMetrics(reg))
	require.NoError(t, err)

	handler := NewRouter(
		cfg,
		nil,
		client,
		redisClient,
		sessions,
		reg,
		metrics.NewHTTPMetrics(reg),
		authSvc,
		userSvc,
		categorySvc,
		itemSvc,
		goodsInSvc,
		goodsOutSvc,
		ledgerSvc,
	)

	return &harness{t: t, db: conn, handler: handler, sessions: sessions, cfg: cfg}
}

func (h *harness) createUser(username string, role enums.UserRole, password string) *models.User {
	h.t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(h.t, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@gudang.id",
		FullName:     strings.ToUpper(username),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(h.t, h.db.Create(user).Error)
	return user
}

// tokenFor mints an access token backed by a live session.
func (h *harness) tokenFor(user *models.User) string {
	h.t.Helper()
	accessID := session.NewAccessID()
	_, err := h.sessions.Generate(context.Background(), accessID, user.ID)
	require.NoError(h.t, err)
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		JTI:      accessID,
	})
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/ready", "", "").Code)

	rec := h.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/items", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)

	rec = h.do(http.MethodGet, "/api/items", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThenListItems(t *testing.T) {
	h := newHarness(t)
	h.createUser("budi", enums.UserRoleStaff, "budi-secret-1")

	rec := h.do(http.MethodPost, "/api/auth/login", "", `{"username":"budi","password":"budi-secret-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))
	require.NotEmpty(t, login.AccessToken)

	rec = h.do(http.MethodGet, "/api/items", login.AccessToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPost, "/api/auth/logout", login.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/items", login.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoodsOutApprovalThroughRouter(t *testing.T) {
	h := newHarness(t)
	staff := h.createUser("staf", enums.UserRoleStaff, "staff-secret-1")
	approverUser := h.createUser("spv", enums.UserRoleApprover, "spv-secret-1")

	item := &models.Item{Code: "PRN-01", Name: "Printer", Unit: "unit", Stock: 5, IsActive: true}
	require.NoError(t, h.db.Create(item).Error)

	staffToken := h.tokenFor(staff)
	rec := h.do(http.MethodPost, "/api/goods-out", staffToken,
		`{"recipient":"Divisi IT","lines":[{"itemId":`+jsonID(item.ID)+`,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created goodsout.ShipmentDTO
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.Equal(t, enums.ShipmentStatusPending, created.Status)

	approvePath := "/api/goods-out/" + jsonID(created.ID) + "/approve"

	rec = h.do(http.MethodPut, approvePath, staffToken, `{"action":"approve"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	approverToken := h.tokenFor(approverUser)
	rec = h.do(http.MethodPut, approvePath, approverToken, `{"action":"approve"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	var decided goodsout.DecisionResult
	require.NoError(t, json.Unmarshal(env.Data, &decided))
	assert.Equal(t, enums.ShipmentStatusApproved, decided.Status)
	assert.Equal(t, approverUser.ID, decided.ApproverID)

	var after models.Item
	require.NoError(t, h.db.First(&after, item.ID).Error)
	assert.Equal(t, 3, after.Stock)

	rec = h.do(http.MethodPut, approvePath, approverToken, `{"action":"reject"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "STATE_CONFLICT", decode(t, rec).Code)

	require.NoError(t, h.db.First(&after, item.ID).Error)
	assert.Equal(t, 3, after.Stock)
}

func TestUsersRequireAdmin(t *testing.T) {
	h := newHarness(t)
	staff := h.createUser("staf", enums.UserRoleStaff, "staff-secret-1")
	admin := h.createUser("root", enums.UserRoleAdmin, "admin-secret-1")

	rec := h.do(http.MethodPut, "/api/users/"+jsonID(staff.ID), h.tokenFor(staff), `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPut, "/api/users/"+jsonID(staff.ID), h.tokenFor(admin), `{"role":"approver","jobType":"Supervisor"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated users.UserDTO
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.Equal(t, enums.UserRoleApprover, updated.Role)
	assert.Equal(t, "Supervisor", updated.JobType)
}

func TestGoodsInIdempotencyReplay(t *testing.T) {
	h := newHarness(t)
	staff := h.createUser("staf", enums.UserRoleStaff, "staff-secret-1")
	item := &models.Item{Code: "MSE-01", Name: "Mouse", Unit: "pcs", IsActive: true}
	require.NoError(t, h.db.Create(item).Error)

	token := h.tokenFor(staff)
	body := `{"supplierName":"PT Maju","lines":[{"itemId":` + jsonID(item.ID) + `,"quantity":4}]}`

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/goods-in", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "gi-001")
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send()
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var after models.Item
	require.NoError(t, h.db.First(&after, item.ID).Error)
	assert.Equal(t, 4, after.Stock)
}

func jsonID(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAuthMeReturnsCaller(t *testing.T) {
	h := newHarness(t)
	user := h.createUser("sari", enums.UserRoleApprover, "sari-secret-1")

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", "", "").Code)

	rec := h.do(http.MethodGet, "/api/auth/me", h.tokenFor(user), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me users.UserDTO
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "sari", me.Username)
}
