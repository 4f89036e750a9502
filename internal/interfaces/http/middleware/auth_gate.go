package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/interfaces/http/dto"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/logger"
)

// GateConfig controls how the token gate extracts and judges credentials.
type GateConfig struct {
	// Mode selects the validation path: access-only or refresh-capable.
	Mode constants.SessionMode

	// Carrier names where the token travels: header or cookie.
	Carrier constants.TokenCarrier

	// TokenKey is the header or cookie name.
	TokenKey string

	// AlwaysSuccessStatus pins rejections to HTTP 200; the failure kind
	// travels in the body.
	AlwaysSuccessStatus bool
}

// Gate validates the bearer token on every protected request and installs
// the principal claims into the request context.
func Gate(cfg GateConfig, lifecycle service.TokenLifecycleService, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	gateLog := log.WithComponent("gate")
	tokenKey := cfg.TokenKey
	if tokenKey == "" {
		tokenKey = constants.DefaultTokenKey
	}
	return func(c *gin.Context) {
		tokenString := extractToken(c, cfg.Carrier, tokenKey)
		if tokenString == "" {
			metrics.RecordTokenValidated("missing")
			dto.AbortFail(c, errors.ErrMissingToken(), cfg.AlwaysSuccessStatus)
			return
		}

		var claims *models.Claims
		var err error
		if cfg.Mode == constants.ModeAccess {
			claims, err = lifecycle.ParseAccess(c.Request.Context(), tokenString)
		} else {
			claims, err = lifecycle.ParseAccessRefreshable(c.Request.Context(), tokenString, c.ClientIP())
		}
		if err != nil {
			metrics.RecordTokenValidated(string(errors.KindOf(err)))
			gateLog.Warn(c.Request.Context(), "token rejected",
				logger.String("kind", string(errors.KindOf(err))),
				logger.String("client_ip", c.ClientIP()),
			)
			dto.AbortFail(c, err, cfg.AlwaysSuccessStatus)
			return
		}

		metrics.RecordTokenValidated("ok")
		InstallPrincipal(c, claims)
		c.Next()
	}
}

// InstallPrincipal puts the claims on the gin context and the request
// context. Exposed for handler tests.
func InstallPrincipal(c *gin.Context, claims *models.Claims) {
	c.Set(string(constants.ContextKeyPrincipal), claims)
	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, constants.ContextKeyPrincipal, claims)
	ctx = context.WithValue(ctx, constants.ContextKeyTenantID, claims.TenantID)
	c.Request = c.Request.WithContext(ctx)
}

// PrincipalFrom returns the authenticated claims the gate installed.
func PrincipalFrom(c *gin.Context) (*models.Claims, bool) {
	value, exists := c.Get(string(constants.ContextKeyPrincipal))
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.Claims)
	return claims, ok
}

// RequireRole blocks principals lacking the role. Runs after Gate.
func RequireRole(role string, alwaysSuccessStatus bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := PrincipalFrom(c)
		if !ok || !claims.HasRole(role) {
			dto.AbortFail(c, errors.ErrForbidden(role), alwaysSuccessStatus)
			return
		}
		c.Next()
	}
}

// extractToken pulls the raw token from the configured carrier. A "Bearer "
// prefix on the header form is stripped case-insensitively.
func extractToken(c *gin.Context, carrier constants.TokenCarrier, tokenKey string) string {
	if carrier == constants.CarrierCookie {
		cookie, err := c.Cookie(tokenKey)
		if err != nil {
			return ""
		}
		return cookie
	}
	raw := c.GetHeader(tokenKey)
	if len(raw) > len(constants.BearerPrefix) && strings.EqualFold(raw[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return raw[len(constants.BearerPrefix):]
	}
	return raw
}
