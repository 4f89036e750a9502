package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/repository"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/keyscheme"
	"github.com/tokengate/tokengate/pkg/logger"
)

// Config is the immutable lifecycle configuration injected at construction.
type Config struct {
	// AppName is the leading key segment isolating this deployment's records.
	AppName string

	// Mode selects access-only or refresh-capable session tracking.
	Mode constants.SessionMode

	// AccessExpire bounds access tokens and AccessRecords.
	AccessExpire time.Duration

	// RefreshExpire bounds RefreshRecords and OAuthRecords.
	RefreshExpire time.Duration

	// OAuthAppID, when set, pins the deployment to one external application:
	// tokens carrying a different oauthId are rejected.
	OAuthAppID string
}

var _ TokenLifecycleService = (*tokenLifecycleService)(nil)

type tokenLifecycleService struct {
	cfg      Config
	codec    TokenCodec
	registry repository.SessionRegistry
	audit    AuditService
	log      logger.Logger
}

// NewTokenLifecycleService wires the protocol core from its collaborators.
func NewTokenLifecycleService(
	cfg Config,
	codec TokenCodec,
	registry repository.SessionRegistry,
	audit AuditService,
	log logger.Logger,
) TokenLifecycleService {
	if cfg.AccessExpire <= 0 {
		cfg.AccessExpire = constants.AccessTokenDefaultTTL
	}
	if cfg.RefreshExpire <= 0 {
		cfg.RefreshExpire = constants.RefreshTokenDefaultTTL
	}
	if cfg.Mode == "" {
		cfg.Mode = constants.ModeRefresh
	}
	return &tokenLifecycleService{
		cfg:      cfg,
		codec:    codec,
		registry: registry,
		audit:    audit,
		log:      log.WithComponent("token_lifecycle"),
	}
}

// ================================================================================
// Issuance
// ================================================================================

func (s *tokenLifecycleService) AssignAccess(ctx context.Context, claims *models.Claims) (string, error) {
	claims, err := s.prepareClaims(claims)
	if err != nil {
		return "", err
	}
	claims.AccessID = uuid.New().String()
	claims.RefreshID = ""

	tokenString, err := s.codec.SignAccess(claims, s.cfg.AccessExpire)
	if err != nil {
		return "", err
	}

	if claims.AccessValid {
		if claims.AccessUnique {
			// One live session per account: every earlier record dies with
			// this issuance.
			prefixDeleted, err := s.registry.DeleteAccessesByAccount(ctx, claims.TenantID, claims.AuthType, claims.Account())
			if err != nil {
				return "", errors.ErrInternal("failed to enforce session uniqueness", err)
			}
			if prefixDeleted > 0 {
				s.log.Info(ctx, "superseded existing sessions on unique issuance",
					logger.String("tenant_id", claims.TenantID),
					logger.String("account", claims.Account()),
					logger.Int64("deleted", prefixDeleted),
				)
			}
		}
		if err := s.registry.PutAccess(ctx, s.newAccessRecord(claims), s.cfg.AccessExpire); err != nil {
			return "", errors.ErrInternal("failed to persist access record", err)
		}
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenIssued, claims.TenantID, claims.AuthType, claims.Account()).
		WithAccessID(claims.AccessID).
		WithClientIP(claims.AccessIP))
	return tokenString, nil
}

func (s *tokenLifecycleService) AssignAccessRefresh(ctx context.Context, claims *models.Claims) (*models.TokenPair, error) {
	claims, err := s.prepareClaims(claims)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, claims)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenIssued, claims.TenantID, claims.AuthType, claims.Account()).
		WithAccessID(claims.AccessID).
		WithClientIP(claims.AccessIP))
	return pair, nil
}

// issuePair generates fresh identifiers, signs both tokens, and persists the
// access record plus the account's refresh (or oauth) record. Claims are
// mutated in place with the new identifiers.
func (s *tokenLifecycleService) issuePair(ctx context.Context, claims *models.Claims) (*models.TokenPair, error) {
	claims.AccessID = uuid.New().String()
	claims.RefreshID = uuid.New().String()

	accessToken, err := s.codec.SignAccess(claims, s.cfg.AccessExpire)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.SignRefresh(&models.RefreshClaims{
		TenantID:     claims.TenantID,
		AuthType:     claims.AuthType,
		RefreshID:    claims.RefreshID,
		Username:     claims.Username,
		AccessUnique: claims.AccessUnique,
		AccessValid:  claims.AccessValid,
		OAuthID:      claims.OAuthID,
	})
	if err != nil {
		return nil, err
	}

	if claims.AccessValid {
		if err := s.registry.PutAccess(ctx, s.newAccessRecord(claims), s.cfg.AccessExpire); err != nil {
			return nil, errors.ErrInternal("failed to persist access record", err)
		}
	}

	record := models.RefreshRecord{
		TenantID:        claims.TenantID,
		AuthType:        claims.AuthType,
		Account:         claims.Account(),
		RefreshID:       claims.RefreshID,
		CurrentAccessID: claims.AccessID,
		AccessUnique:    claims.AccessUnique,
		AccessValid:     claims.AccessValid,
		Claims:          *claims,
		IssuedAt:        time.Now().UTC(),
	}
	if claims.OAuthID != "" {
		oauthRecord := &models.OAuthRecord{
			RefreshRecord: record,
			OAuthID:       claims.OAuthID,
			OAuthName:     claims.OAuthName,
		}
		if err := s.registry.PutOAuth(ctx, oauthRecord, s.cfg.RefreshExpire); err != nil {
			return nil, errors.ErrInternal("failed to persist oauth record", err)
		}
	} else {
		if err := s.registry.PutRefresh(ctx, &record, s.cfg.RefreshExpire); err != nil {
			return nil, errors.ErrInternal("failed to persist refresh record", err)
		}
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    string(constants.TokenTypeBearer),
		ExpiresIn:    int64(s.cfg.AccessExpire.Seconds()),
	}, nil
}

// ================================================================================
// Validation
// ================================================================================

func (s *tokenLifecycleService) ParseAccess(ctx context.Context, tokenString string) (*models.Claims, error) {
	claims, err := s.codec.VerifyAccess(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.checkOAuthScope(claims); err != nil {
		return nil, err
	}

	if claims.AccessValid {
		record, err := s.registry.GetAccess(ctx, claims.TenantID, claims.AuthType, claims.Account(), claims.AccessID)
		if err != nil {
			// Store faults widen nothing: fail closed.
			return nil, errors.ErrInvalidSignature().WithCause(err)
		}
		if record == nil || record.IsRevoked() {
			return nil, errors.ErrRevoked(claims.AccessID)
		}
	}
	return claims, nil
}

func (s *tokenLifecycleService) ParseAccessRefreshable(ctx context.Context, tokenString, clientIP string) (*models.Claims, error) {
	claims, err := s.codec.VerifyAccess(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.checkOAuthScope(claims); err != nil {
		return nil, err
	}

	// IP-binding forces re-authentication instead of silently trusting a
	// replayed token from a different network.
	if claims.AccessUnique && claims.AccessIP != "" && clientIP != "" && claims.AccessIP != clientIP {
		return nil, errors.ErrIPMismatch(claims.AccessIP, clientIP)
	}

	if claims.AccessValid {
		record, err := s.registry.GetAccess(ctx, claims.TenantID, claims.AuthType, claims.Account(), claims.AccessID)
		if err != nil {
			return nil, errors.ErrInvalidSignature().WithCause(err)
		}
		if record == nil || record.IsRevoked() {
			return nil, errors.ErrRevoked(claims.AccessID)
		}

		if claims.AccessUnique {
			refreshID, err := s.currentRefreshID(ctx, claims)
			if err != nil {
				return nil, err
			}
			if refreshID != claims.RefreshID {
				// The refresh session rotated away from this pair: another
				// login superseded it.
				return nil, errors.ErrConflictingSession()
			}
		}
	}
	return claims, nil
}

// currentRefreshID loads the refresh (or oauth) record the access token's
// pair belongs to and returns its live refreshId.
func (s *tokenLifecycleService) currentRefreshID(ctx context.Context, claims *models.Claims) (string, error) {
	if claims.OAuthID != "" {
		record, err := s.registry.GetOAuth(ctx, claims.TenantID, claims.AuthType, claims.Account(), claims.OAuthID)
		if err != nil {
			return "", errors.ErrInvalidSignature().WithCause(err)
		}
		if record == nil {
			return "", errors.ErrRevoked(claims.AccessID)
		}
		return record.RefreshID, nil
	}
	record, err := s.registry.GetRefresh(ctx, claims.TenantID, claims.AuthType, claims.Account())
	if err != nil {
		return "", errors.ErrInvalidSignature().WithCause(err)
	}
	if record == nil {
		return "", errors.ErrRevoked(claims.AccessID)
	}
	return record.RefreshID, nil
}

// ================================================================================
// Rotation
// ================================================================================

func (s *tokenLifecycleService) RefreshAccessRefresh(ctx context.Context, refreshTokenString, clientIP string) (*models.TokenPair, error) {
	refreshClaims, err := s.codec.VerifyRefresh(refreshTokenString)
	if err != nil {
		return nil, err
	}

	var record *models.RefreshRecord
	if refreshClaims.OAuthID != "" {
		oauthRecord, err := s.registry.GetOAuth(ctx, refreshClaims.TenantID, refreshClaims.AuthType, refreshClaims.Account(), refreshClaims.OAuthID)
		if err != nil {
			return nil, errors.ErrInvalidSignature().WithCause(err)
		}
		if oauthRecord != nil {
			record = &oauthRecord.RefreshRecord
		}
	} else {
		record, err = s.registry.GetRefresh(ctx, refreshClaims.TenantID, refreshClaims.AuthType, refreshClaims.Account())
		if err != nil {
			return nil, errors.ErrInvalidSignature().WithCause(err)
		}
	}
	if record == nil {
		return nil, errors.ErrRefreshEmpty()
	}

	if refreshClaims.AccessUnique && refreshClaims.RefreshID != record.RefreshID {
		// A previous rotation already superseded this refresh token.
		return nil, errors.ErrRefreshChanged()
	}

	// Steps below are multi-key and not transactional: two concurrent
	// rotations with the same still-valid refresh token can both pass the
	// refreshId check and each produce a valid pair. Accepted property of
	// the protocol; a conditional delete keyed on refreshId would close it.
	if record.CurrentAccessID != "" {
		if err := s.registry.DeleteAccess(ctx, record.TenantID, record.AuthType, record.Account, record.CurrentAccessID); err != nil {
			return nil, errors.ErrInternal("failed to invalidate rotated access record", err)
		}
	}

	claims := record.Claims.Clone()
	claims.TenantID = record.TenantID
	claims.AuthType = record.AuthType
	claims.AccessUnique = record.AccessUnique
	claims.AccessValid = record.AccessValid
	if clientIP != "" {
		claims.AccessIP = clientIP
	}

	pair, err := s.issuePair(ctx, claims)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenRotated, claims.TenantID, claims.AuthType, claims.Account()).
		WithAccessID(claims.AccessID).
		WithClientIP(clientIP))
	return pair, nil
}

// ================================================================================
// Revocation
// ================================================================================

func (s *tokenLifecycleService) Revoke(ctx context.Context, principal *models.Claims) error {
	if principal == nil {
		return errors.ErrInvalidRequest("no principal to revoke")
	}

	event := models.NewAuditEvent(constants.AuditEventTokenRevoked, principal.TenantID, principal.AuthType, principal.Account()).
		WithAccessID(principal.AccessID)

	if s.cfg.Mode == constants.ModeAccess {
		if err := s.registry.DeleteAccess(ctx, principal.TenantID, principal.AuthType, principal.Account(), principal.AccessID); err != nil {
			return errors.ErrInternal("failed to delete access record", err)
		}
		s.publishAudit(ctx, event)
		return nil
	}

	if principal.AccessUnique {
		// Whole-account logout: the refresh session dies and every
		// outstanding credential of the account with it.
		if err := s.registry.DeleteRefresh(ctx, principal.TenantID, principal.AuthType, principal.Account()); err != nil {
			return errors.ErrInternal("failed to delete refresh record", err)
		}
		if _, err := s.registry.DeleteAccessesByAccount(ctx, principal.TenantID, principal.AuthType, principal.Account()); err != nil {
			return errors.ErrInternal("failed to cascade access records", err)
		}
		if _, err := s.registry.DeleteOAuthByAccount(ctx, principal.TenantID, principal.AuthType, principal.Account()); err != nil {
			return errors.ErrInternal("failed to cascade oauth records", err)
		}
		s.publishAudit(ctx, event)
		return nil
	}

	// Shared/multi-device: other devices keep working, only this device's
	// own record dies. The flag flip preserves the remaining TTL.
	if err := s.registry.RevokeAccessFlag(ctx, principal.TenantID, principal.AuthType, principal.Account(), principal.AccessID); err != nil {
		return errors.ErrInternal("failed to flag access record revoked", err)
	}
	s.publishAudit(ctx, event)
	return nil
}

func (s *tokenLifecycleService) RevokeAccessToken(ctx context.Context, tenant, authType, account, accessID string) error {
	if err := s.registry.DeleteAccess(ctx, tenant, authType, account, accessID); err != nil {
		return errors.ErrInternal("failed to delete access record", err)
	}
	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenRevoked, tenant, authType, account).WithAccessID(accessID))
	return nil
}

func (s *tokenLifecycleService) RevokeRefreshToken(ctx context.Context, tenant, authType, account string) error {
	if err := s.registry.DeleteRefresh(ctx, tenant, authType, account); err != nil {
		return errors.ErrInternal("failed to delete refresh record", err)
	}
	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenRevoked, tenant, authType, account))
	return nil
}

func (s *tokenLifecycleService) RevokeOAuthToken(ctx context.Context, tenant, authType, account, oauthAppID string) error {
	if err := s.registry.DeleteOAuth(ctx, tenant, authType, account, oauthAppID); err != nil {
		return errors.ErrInternal("failed to delete oauth record", err)
	}
	s.publishAudit(ctx, models.NewAuditEvent(constants.AuditEventTokenRevoked, tenant, authType, account))
	return nil
}

// ================================================================================
// Audit Listing
// ================================================================================

func (s *tokenLifecycleService) ListAccessTokens(ctx context.Context, tenant string) ([]*models.AccessRecord, error) {
	return s.registry.ListAccess(ctx, tenant)
}

func (s *tokenLifecycleService) ListRefreshTokens(ctx context.Context, tenant string) ([]*models.RefreshRecord, error) {
	return s.registry.ListRefresh(ctx, tenant)
}

func (s *tokenLifecycleService) ListOAuthTokens(ctx context.Context, tenant string) ([]*models.OAuthRecord, error) {
	return s.registry.ListOAuth(ctx, tenant)
}

// ================================================================================
// Internal Helpers
// ================================================================================

// prepareClaims clones the caller's claims, applies defaults and rejects key
// fields that would break prefix matching in the store.
func (s *tokenLifecycleService) prepareClaims(claims *models.Claims) (*models.Claims, error) {
	if claims == nil {
		return nil, errors.ErrInvalidRequest("no claims supplied")
	}
	prepared := claims.Clone()
	if prepared.AuthType == "" {
		prepared.AuthType = constants.DefaultAuthType
	}
	if !keyscheme.ValidFields(prepared.TenantID, prepared.AuthType, prepared.Account()) {
		return nil, errors.ErrInvalidRequest("tenant, authType and account must be non-empty and must not contain the key separator")
	}
	if prepared.OAuthID != "" && !keyscheme.ValidField(prepared.OAuthID) {
		return nil, errors.ErrInvalidRequest("oauthId must not contain the key separator")
	}
	return prepared, nil
}

func (s *tokenLifecycleService) newAccessRecord(claims *models.Claims) *models.AccessRecord {
	return &models.AccessRecord{
		Claims:   *claims,
		Revoked:  models.AccessActive,
		IssuedIP: claims.AccessIP,
		IssuedAt: time.Now().UTC(),
	}
}

func (s *tokenLifecycleService) checkOAuthScope(claims *models.Claims) error {
	if s.cfg.OAuthAppID != "" && claims.OAuthID != s.cfg.OAuthAppID {
		return errors.ErrOAuthAppMismatch(s.cfg.OAuthAppID, claims.OAuthID)
	}
	return nil
}

func (s *tokenLifecycleService) publishAudit(ctx context.Context, event *models.AuditEvent) {
	if s.audit != nil {
		s.audit.Publish(ctx, event)
	}
}
