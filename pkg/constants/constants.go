// Package constants defines system-wide constants for the tokengate service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Token Type Constants
// ================================================================================

// TokenType represents the type of authentication token
type TokenType string

const (
	// TokenTypeAccess represents a short-lived access token
	TokenTypeAccess TokenType = "access_token"

	// TokenTypeRefresh represents a long-lived refresh token
	TokenTypeRefresh TokenType = "refresh_token"

	// TokenTypeBearer represents the Bearer token type for HTTP Authorization header
	TokenTypeBearer TokenType = "Bearer"
)

// ================================================================================
// Session Mode Constants
// ================================================================================

// SessionMode selects how a deployment tracks issued credentials.
type SessionMode string

const (
	// ModeAccess issues stand-alone access tokens with no refresh pair
	ModeAccess SessionMode = "access"

	// ModeRefresh issues rotating access+refresh pairs backed by a RefreshRecord
	ModeRefresh SessionMode = "refresh"
)

// ================================================================================
// Token Carrier Constants
// ================================================================================

// TokenCarrier identifies where the client transports the bearer token.
type TokenCarrier string

const (
	// CarrierHeader reads the token from a request header (optionally "Bearer "-prefixed)
	CarrierHeader TokenCarrier = "header"

	// CarrierCookie reads the token from a named cookie
	CarrierCookie TokenCarrier = "cookie"
)

// DefaultTokenKey is the carrier name used when none is configured.
const DefaultTokenKey = "Authorization"

// BearerPrefix is the optional scheme prefix stripped from header values.
const BearerPrefix = "Bearer "

// ================================================================================
// Session Kind Constants
// ================================================================================

// SessionKind names the record family a store key belongs to.
type SessionKind string

const (
	// KindAccess marks per-issuance AccessRecord keys
	KindAccess SessionKind = "access"

	// KindRefresh marks the per-account RefreshRecord key
	KindRefresh SessionKind = "refresh"

	// KindOAuth marks per-external-application OAuthRecord keys
	KindOAuth SessionKind = "oauth"
)

// ================================================================================
// Token Lifetime Constants
// ================================================================================

const (
	// AccessTokenDefaultTTL is the default lifetime for access tokens (30 minutes)
	AccessTokenDefaultTTL = 30 * time.Minute

	// RefreshTokenDefaultTTL is the default lifetime for refresh records (30 days)
	RefreshTokenDefaultTTL = 30 * 24 * time.Hour

	// PrincipalCacheTTL is the in-process cache lifetime for loaded principals
	PrincipalCacheTTL = 30 * time.Second
)

// DefaultAuthType is the session family used when the caller names none.
const DefaultAuthType = "default"

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the typed key for request-scoped context values.
type ContextKey string

const (
	// ContextKeyPrincipal carries the resolved principal claims after gate success
	ContextKeyPrincipal ContextKey = "principal"

	// ContextKeyRequestID carries the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyClientIP carries the caller's resolved network address
	ContextKeyClientIP ContextKey = "client_ip"

	// ContextKeyTenantID carries the authenticated tenant for log enrichment
	ContextKeyTenantID ContextKey = "tenant_id"
)

// RequestIDHeader is the inbound/outbound correlation id header.
const RequestIDHeader = "X-Request-ID"

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType classifies published audit events.
type AuditEventType string

const (
	// AuditEventTokenIssued is published on successful issuance
	AuditEventTokenIssued AuditEventType = "token_issued"

	// AuditEventTokenRotated is published on successful refresh rotation
	AuditEventTokenRotated AuditEventType = "token_rotated"

	// AuditEventTokenRevoked is published on session revocation
	AuditEventTokenRevoked AuditEventType = "token_revoked"

	// AuditEventAuthenticationFailed is published when the gate rejects a request
	AuditEventAuthenticationFailed AuditEventType = "authentication_failed"

	// AuditEventLoginFailed is published when credential verification fails
	AuditEventLoginFailed AuditEventType = "login_failed"
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents logging severity.
type LogLevel int

const (
	// LogLevelDebug enables verbose diagnostic output
	LogLevelDebug LogLevel = iota

	// LogLevelInfo is the default operational level
	LogLevelInfo

	// LogLevelWarn reports recoverable anomalies
	LogLevelWarn

	// LogLevelError reports failures
	LogLevelError

	// LogLevelFatal reports unrecoverable failures before exit
	LogLevelFatal
)

// RoleAdmin gates the administrative session-management surface.
const RoleAdmin = "admin"
