// Package service contains the token lifecycle protocol core and the
// collaborator contracts it composes.
package service

import (
	"context"
	"time"

	"github.com/tokengate/tokengate/internal/domain/models"
)

// TokenCodec encodes a claims payload into a signed, time-bounded compact
// token string and decodes it back. Access and refresh tokens are signed with
// distinct secrets so a leaked refresh secret cannot forge access tokens and
// vice versa.
type TokenCodec interface {
	// SignAccess signs the full claims payload with the access secret and
	// the given expiry.
	SignAccess(claims *models.Claims, ttl time.Duration) (string, error)

	// VerifyAccess checks signature and expiry and returns the claims.
	// Failures carry KindExpired or KindInvalidSignature.
	VerifyAccess(tokenString string) (*models.Claims, error)

	// SignRefresh signs the reduced refresh payload with the refresh secret.
	// Refresh tokens carry no expiry claim; the RefreshRecord TTL bounds
	// their lifetime.
	SignRefresh(claims *models.RefreshClaims) (string, error)

	// VerifyRefresh checks the refresh signature and returns the reduced
	// claims.
	VerifyRefresh(tokenString string) (*models.RefreshClaims, error)
}

// PrincipalLoader resolves the claims payload for an account. Credential
// verification happens at the login boundary against the returned hash.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, tenantID, username string) (*models.Principal, error)
}

// AuditService publishes token lifecycle audit events. Publishing is
// best-effort; a failed publish never fails the operation it describes.
type AuditService interface {
	Publish(ctx context.Context, event *models.AuditEvent)
	Close() error
}

// TokenLifecycleService orchestrates issuance, validation, rotation and
// revocation. It owns every protocol rule; transports only move tokens in
// and out of requests.
type TokenLifecycleService interface {
	// AssignAccess issues a stand-alone access token (access-only mode).
	// The caller populates the principal claims and the issuance IP.
	AssignAccess(ctx context.Context, claims *models.Claims) (string, error)

	// AssignAccessRefresh issues an access+refresh pair and persists the
	// account's RefreshRecord (or OAuthRecord when claims carry an oauthId).
	AssignAccessRefresh(ctx context.Context, claims *models.Claims) (*models.TokenPair, error)

	// ParseAccess validates an access token in access-only deployments:
	// signature, expiry, oauth scoping, and the server-side record when the
	// session is stateful.
	ParseAccess(ctx context.Context, tokenString string) (*models.Claims, error)

	// ParseAccessRefreshable validates an access token on every protected
	// request in refresh-capable deployments, adding IP-binding and
	// superseded-session detection. clientIP is the caller's current
	// address as resolved by the transport.
	ParseAccessRefreshable(ctx context.Context, tokenString, clientIP string) (*models.Claims, error)

	// RefreshAccessRefresh rotates a refresh token into a new access+refresh
	// pair, invalidating the pair it replaces.
	RefreshAccessRefresh(ctx context.Context, refreshTokenString, clientIP string) (*models.TokenPair, error)

	// Revoke ends the caller's own session per the deployment mode and the
	// session's uniqueness flag.
	Revoke(ctx context.Context, principal *models.Claims) error

	// RevokeAccessToken removes one AccessRecord by explicit key
	// (operator-driven session management).
	RevokeAccessToken(ctx context.Context, tenant, authType, account, accessID string) error

	// RevokeRefreshToken removes the account's RefreshRecord.
	RevokeRefreshToken(ctx context.Context, tenant, authType, account string) error

	// RevokeOAuthToken removes the account's OAuthRecord for one external
	// application.
	RevokeOAuthToken(ctx context.Context, tenant, authType, account, oauthAppID string) error

	// ListAccessTokens lists a tenant's live AccessRecords.
	ListAccessTokens(ctx context.Context, tenant string) ([]*models.AccessRecord, error)

	// ListRefreshTokens lists a tenant's live RefreshRecords.
	ListRefreshTokens(ctx context.Context, tenant string) ([]*models.RefreshRecord, error)

	// ListOAuthTokens lists a tenant's live OAuthRecords.
	ListOAuthTokens(ctx context.Context, tenant string) ([]*models.OAuthRecord, error)
}
