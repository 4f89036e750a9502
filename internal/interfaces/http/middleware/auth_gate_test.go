package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/internal/infrastructure/audit"
	"github.com/tokengate/tokengate/internal/infrastructure/crypto"
	redisstore "github.com/tokengate/tokengate/internal/infrastructure/persistence/redis"
	"github.com/tokengate/tokengate/internal/interfaces/http/dto"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGateLifecycle(t *testing.T) service.TokenLifecycleService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	registry := redisstore.NewSessionRegistry(redisstore.NewSessionStore(client), "gate")
	codec := crypto.NewJWTCodec("gate-access-secret", "gate-refresh-secret", "gate")
	return service.NewTokenLifecycleService(
		service.Config{AppName: "gate", AccessExpire: time.Minute, RefreshExpire: time.Hour},
		codec, registry, audit.NewNoopPublisher(), logger.NewNoopLogger(),
	)
}

func gatedRouter(cfg GateConfig, lifecycle service.TokenLifecycleService) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", Gate(cfg, lifecycle, nil, logger.NewNoopLogger()), func(c *gin.Context) {
		claims, _ := PrincipalFrom(c)
		dto.OK(c, gin.H{"account": claims.Account()})
	})
	return router
}

func issueToken(t *testing.T, lifecycle service.TokenLifecycleService, roles ...string) string {
	t.Helper()
	pair, err := lifecycle.AssignAccessRefresh(context.Background(), &models.Claims{
		TenantID: "t1",
		Username: "alice",
		Roles:    roles,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeEnvelope(t *testing.T, body *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var envelope dto.Response
	require.NoError(t, json.Unmarshal(body.Body.Bytes(), &envelope))
	return envelope
}

func TestGateMissingToken(t *testing.T) {
	router := gatedRouter(GateConfig{}, newGateLifecycle(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing_token", decodeEnvelope(t, w).Code)
}

func TestGateGarbageToken(t *testing.T) {
	router := gatedRouter(GateConfig{}, newGateLifecycle(t))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(constants.DefaultTokenKey, "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_signature", decodeEnvelope(t, w).Code)
}

func TestGateInstallsPrincipal(t *testing.T) {
	lifecycle := newGateLifecycle(t)
	router := gatedRouter(GateConfig{}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(constants.DefaultTokenKey, "Bearer "+issueToken(t, lifecycle))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "OK", envelope.Code)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice", data["account"])
}

func TestGateBearerPrefixCaseInsensitive(t *testing.T) {
	lifecycle := newGateLifecycle(t)
	router := gatedRouter(GateConfig{}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(constants.DefaultTokenKey, "bearer "+issueToken(t, lifecycle))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateCookieCarrier(t *testing.T) {
	lifecycle := newGateLifecycle(t)
	router := gatedRouter(GateConfig{Carrier: constants.CarrierCookie, TokenKey: "session"}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: issueToken(t, lifecycle)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateAlwaysSuccessStatus(t *testing.T) {
	router := gatedRouter(GateConfig{AlwaysSuccessStatus: true}, newGateLifecycle(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	// Rejection still happens, but the transport status is pinned to 200.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "missing_token", decodeEnvelope(t, w).Code)
}

func TestRequireRole(t *testing.T) {
	lifecycle := newGateLifecycle(t)
	router := gin.New()
	router.GET("/admin", Gate(GateConfig{}, lifecycle, nil, logger.NewNoopLogger()), RequireRole(constants.RoleAdmin, false), func(c *gin.Context) {
		dto.OK(c, nil)
	})

	userToken := issueToken(t, lifecycle, "user")
	adminToken := issueToken(t, lifecycle, "user", constants.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.DefaultTokenKey, "Bearer "+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeEnvelope(t, w).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.DefaultTokenKey, "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
