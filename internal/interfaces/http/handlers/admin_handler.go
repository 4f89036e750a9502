package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/interfaces/http/dto"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/logger"
)

// AdminHandler serves the operator surface: session listing and targeted
// revocation. Routes run behind the gate plus the admin role check.
type AdminHandler struct {
	alwaysSuccessStatus bool

	lifecycle service.TokenLifecycleService
	metrics   *monitoring.Metrics
	log       logger.Logger
}

// NewAdminHandler wires the operator endpoints.
func NewAdminHandler(alwaysSuccessStatus bool, lifecycle service.TokenLifecycleService, metrics *monitoring.Metrics, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		alwaysSuccessStatus: alwaysSuccessStatus,
		lifecycle:           lifecycle,
		metrics:             metrics,
		log:                 log.WithComponent("admin_handler"),
	}
}

// ListAccessSessions lists a tenant's live access records.
func (h *AdminHandler) ListAccessSessions(c *gin.Context) {
	tenant := c.Param("tenant")
	records, err := h.lifecycle.ListAccessTokens(c.Request.Context(), tenant)
	if err != nil {
		dto.Fail(c, errors.ErrInternal("failed to list access sessions", err), h.alwaysSuccessStatus)
		return
	}
	dto.OK(c, records)
}

// ListRefreshSessions lists a tenant's live refresh records.
func (h *AdminHandler) ListRefreshSessions(c *gin.Context) {
	tenant := c.Param("tenant")
	records, err := h.lifecycle.ListRefreshTokens(c.Request.Context(), tenant)
	if err != nil {
		dto.Fail(c, errors.ErrInternal("failed to list refresh sessions", err), h.alwaysSuccessStatus)
		return
	}
	dto.OK(c, records)
}

// ListOAuthSessions lists a tenant's live oauth records.
func (h *AdminHandler) ListOAuthSessions(c *gin.Context) {
	tenant := c.Param("tenant")
	records, err := h.lifecycle.ListOAuthTokens(c.Request.Context(), tenant)
	if err != nil {
		dto.Fail(c, errors.ErrInternal("failed to list oauth sessions", err), h.alwaysSuccessStatus)
		return
	}
	dto.OK(c, records)
}

// RevokeAccessSession removes one access record by key.
func (h *AdminHandler) RevokeAccessSession(c *gin.Context) {
	var req dto.RevokeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Fail(c, errors.ErrInvalidRequest("tenantId, authType, account and accessId are required").WithCause(err), h.alwaysSuccessStatus)
		return
	}
	if err := h.lifecycle.RevokeAccessToken(c.Request.Context(), req.TenantID, req.AuthType, req.Account, req.AccessID); err != nil {
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	h.metrics.RecordTokenRevoked(req.TenantID)
	h.log.Info(c.Request.Context(), "access session revoked by operator",
		logger.String("tenant_id", req.TenantID),
		logger.String("account", req.Account),
		logger.String("access_id", req.AccessID),
	)
	dto.OK(c, nil)
}

// RevokeRefreshSession removes an account's refresh record, or its oauth
// record when oauthAppId is set.
func (h *AdminHandler) RevokeRefreshSession(c *gin.Context) {
	var req dto.RevokeRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Fail(c, errors.ErrInvalidRequest("tenantId, authType and account are required").WithCause(err), h.alwaysSuccessStatus)
		return
	}

	var err error
	if req.OAuthAppID != "" {
		err = h.lifecycle.RevokeOAuthToken(c.Request.Context(), req.TenantID, req.AuthType, req.Account, req.OAuthAppID)
	} else {
		err = h.lifecycle.RevokeRefreshToken(c.Request.Context(), req.TenantID, req.AuthType, req.Account)
	}
	if err != nil {
		dto.Fail(c, err, h.alwaysSuccessStatus)
		return
	}
	h.metrics.RecordTokenRevoked(req.TenantID)
	h.log.Info(c.Request.Context(), "refresh session revoked by operator",
		logger.String("tenant_id", req.TenantID),
		logger.String("account", req.Account),
	)
	dto.OK(c, nil)
}
