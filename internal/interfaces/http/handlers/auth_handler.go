// Package handlers contains the gin endpoint implementations.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/interfaces/http/dto"
	"github.com/tokengate/tokengate/internal/interfaces/http/middleware"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/logger"
)

// AuthHandler serves the session endpoints: login, refresh, logout and the
// authenticated principal view.
type AuthHandler struct {
	mode                constants.SessionMode
	accessUnique        bool
	accessValid         bool
	alwaysSuccessStatus bool
	carrier             constants.TokenCarrier
	tokenKey            string
	accessExpire        time.Duration

	lifecycle  service.TokenLifecycleService
	principals service.PrincipalLoader
	metrics    *monitoring.Metrics
	log        logger.Logger
}

// AuthHandlerConfig carries the deployment flags the handler stamps onto
// every issued session.
type AuthHandlerConfig struct {
	Mode                constants.SessionMode
	AccessUnique        bool
	AccessValid         bool
	AlwaysSuccessStatus bool

	// Carrier and TokenKey mirror the gate's extraction config; with the
	// cookie carrier the handler also delivers tokens through the cookie.
	Carrier  constants.TokenCarrier
	TokenKey string

	// AccessExpire bounds the carrier cookie's max age.
	AccessExpire time.Duration
}

// NewAuthHandler wires the session endpoints.
func NewAuthHandler(
	cfg AuthHandlerConfig,
	lifecycle service.TokenLifecycleService,
	principals service.PrincipalLoader,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *AuthHandler {
	tokenKey := cfg.TokenKey
	if tokenKey == "" {
		tokenKey = constants.DefaultTokenKey
	}
	return &AuthHandler{
		mode:                cfg.Mode,
		accessUnique:        cfg.AccessUnique,
		accessValid:         cfg.AccessValid,
		alwaysSuccessStatus: cfg.AlwaysSuccessStatus,
		carrier:             cfg.Carrier,
		tokenKey:            tokenKey,
		accessExpire:        cfg.AccessExpire,
		lifecycle:           lifecycle,
		principals:          principals,
		metrics:             metrics,
		log:                 log.WithComponent("auth_handler"),
	}
}

// Login verifies credentials and opens a session, returning either a single
// access token or an access+refresh pair depending on the deployment mode.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Fail(c, errors.ErrInvalidRequest("tenantId, username and password are required").WithCause(err), h.alwaysSuccessStatus)
		return
	}

	ctx := c.Request.Context()
	principal, err := h.principals.LoadPrincipal(ctx, req.TenantID, req.Username)
	if err != nil {
		// A missing account reads the same as a wrong password so login
		// cannot be used to probe the directory.
		if errors.IsKind(err, errors.KindPrincipalNotFound) {
			err = errors.ErrBadCredentials()
		}
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	if principal.Disabled {
		dto.Fail(c, errors.ErrBadCredentials(), h.alwaysSuccessStatus)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)) != nil {
		h.log.Warn(ctx, "login rejected",
			logger.String("tenant_id", req.TenantID),
			logger.String("username", req.Username),
			logger.String("client_ip", c.ClientIP()),
		)
		dto.Fail(c, errors.ErrBadCredentials(), h.alwaysSuccessStatus)
		return
	}

	claims := principal.Claims.Clone()
	claims.AuthType = req.AuthType
	claims.AccessUnique = h.accessUnique
	claims.AccessValid = h.accessValid
	claims.AccessIP = c.ClientIP()
	claims.OAuthID = req.OAuthID
	claims.OAuthName = req.OAuthName

	if h.mode == constants.ModeAccess {
		token, err := h.lifecycle.AssignAccess(ctx, claims)
		if err != nil {
			dto.Fail(c, err, h.alwaysSuccessStatus)
			return
		}
		h.metrics.RecordTokenIssued(claims.TenantID, "access")
		h.writeCarrierCookie(c, token)
		dto.OK(c, &models.TokenPair{AccessToken: token, TokenType: string(constants.TokenTypeBearer)})
		return
	}

	pair, err := h.lifecycle.AssignAccessRefresh(ctx, claims)
	if err != nil {
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	h.metrics.RecordTokenIssued(claims.TenantID, "pair")
	h.writeCarrierCookie(c, pair.AccessToken)
	dto.OK(c, pair)
}

// writeCarrierCookie delivers the access token through the session cookie
// when the deployment carries tokens in a cookie. Header deployments return
// tokens in the body only.
func (h *AuthHandler) writeCarrierCookie(c *gin.Context, accessToken string) {
	if h.carrier != constants.CarrierCookie {
		return
	}
	c.SetCookie(h.tokenKey, accessToken, int(h.accessExpire/time.Second), "/", "", false, true)
}

// clearCarrierCookie expires the session cookie after logout.
func (h *AuthHandler) clearCarrierCookie(c *gin.Context) {
	if h.carrier != constants.CarrierCookie {
		return
	}
	c.SetCookie(h.tokenKey, "", -1, "/", "", false, true)
}

// Refresh rotates a refresh token into a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Fail(c, errors.ErrInvalidRequest("refreshToken is required").WithCause(err), h.alwaysSuccessStatus)
		return
	}

	pair, err := h.lifecycle.RefreshAccessRefresh(c.Request.Context(), req.RefreshToken, c.ClientIP())
	if err != nil {
		// The tenant label stays "unknown" on failure: the token may not
		// even decode.
		h.metrics.RecordTokenRotated("unknown", string(errors.KindOf(err)))
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	h.metrics.RecordTokenRotated("unknown", "ok")
	h.writeCarrierCookie(c, pair.AccessToken)
	dto.OK(c, pair)
}

// Logout revokes the caller's own session. Runs behind the gate.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		dto.Fail(c, errors.ErrMissingToken(), h.alwaysSuccessStatus)
		return
	}
	if err := h.lifecycle.Revoke(c.Request.Context(), claims); err != nil {
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	h.metrics.RecordTokenRevoked(claims.TenantID)
	h.clearCarrierCookie(c)
	dto.OK(c, nil)
}

// Me returns the authenticated principal's claims. Runs behind the gate.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		dto.Fail(c, errors.ErrMissingToken(), h.alwaysSuccessStatus)
		return
	}
	dto.OK(c, claims)
}
