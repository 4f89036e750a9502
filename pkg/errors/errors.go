// Package errors defines the structured error types used across the tokengate
// service. Every authentication failure is expressed as an *AuthError carrying
// a protocol Kind and the HTTP status it maps to at the transport boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ================================================================================
// Failure Kinds
// ================================================================================

// Kind classifies an authentication failure. Kinds are stable protocol values:
// handlers branch on them and clients receive them in the error body.
type Kind string

const (
	// KindMissingToken indicates no token was present in the configured carrier
	KindMissingToken Kind = "missing_token"

	// KindInvalidSignature indicates signature verification failed, the token is
	// malformed, or a stored record could not be decoded (fail closed)
	KindInvalidSignature Kind = "invalid_signature"

	// KindExpired indicates the token's expiry claim has passed
	KindExpired Kind = "expired"

	// KindRevoked indicates the server-side record is gone or flagged revoked
	KindRevoked Kind = "revoked"

	// KindIPMismatch indicates the caller's IP differs from the issuance IP
	KindIPMismatch Kind = "ip_mismatch"

	// KindConflictingSession indicates another login superseded this session
	KindConflictingSession Kind = "conflicting_session"

	// KindRefreshEmpty indicates no RefreshRecord exists for the account
	KindRefreshEmpty Kind = "refresh_empty"

	// KindRefreshChanged indicates the presented refresh token was already rotated away
	KindRefreshChanged Kind = "refresh_changed"

	// KindOAuthAppMismatch indicates the token was issued for a different external application
	KindOAuthAppMismatch Kind = "oauth_app_mismatch"

	// KindPrincipalNotFound indicates the user directory has no such account
	KindPrincipalNotFound Kind = "principal_not_found"

	// KindBadCredentials indicates credential verification failed during login
	KindBadCredentials Kind = "bad_credentials"

	// KindInvalidRequest indicates a malformed or incomplete request
	KindInvalidRequest Kind = "invalid_request"

	// KindForbidden indicates an authenticated principal lacks the required role
	KindForbidden Kind = "forbidden"

	// KindInternal indicates an unexpected server-side failure
	KindInternal Kind = "internal_error"
)

// ================================================================================
// AuthError
// ================================================================================

// AuthError is the structured error type returned by the token lifecycle
// service and its collaborators.
type AuthError struct {
	kind       Kind
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Kind returns the protocol failure kind.
func (e *AuthError) Kind() Kind {
	return e.kind
}

// HTTPStatus returns the transport status this failure maps to by default.
// The alwaysSuccessStatus option is applied at the HTTP boundary, not here.
func (e *AuthError) HTTPStatus() int {
	return e.httpStatus
}

// Message returns the human-readable message without the cause chain.
func (e *AuthError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AuthError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the chain.
func (e *AuthError) WithCause(cause error) *AuthError {
	e.cause = cause
	return e
}

// WithMetadata attaches context metadata for logging and error bodies.
func (e *AuthError) WithMetadata(key string, value interface{}) *AuthError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all attached metadata.
func (e *AuthError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Constructors
// ================================================================================

// New creates an AuthError with an explicit kind, status and message.
func New(kind Kind, httpStatus int, message string) *AuthError {
	return &AuthError{kind: kind, httpStatus: httpStatus, message: message}
}

// ErrForbidden reports an authenticated principal lacking the required role.
func ErrForbidden(role string) *AuthError {
	return New(KindForbidden, http.StatusForbidden, "insufficient privileges").
		WithMetadata("required_role", role)
}

// ErrMissingToken reports an absent bearer token.
func ErrMissingToken() *AuthError {
	return New(KindMissingToken, http.StatusUnauthorized, "no token supplied in the configured carrier")
}

// ErrInvalidSignature reports a token or stored record that failed verification.
func ErrInvalidSignature() *AuthError {
	return New(KindInvalidSignature, http.StatusUnauthorized, "token signature verification failed")
}

// ErrExpired reports a token past its expiry.
func ErrExpired(tokenType string) *AuthError {
	return New(KindExpired, http.StatusUnauthorized, fmt.Sprintf("%s has expired", tokenType)).
		WithMetadata("token_type", tokenType)
}

// ErrRevoked reports a missing or explicitly revoked session record.
func ErrRevoked(accessID string) *AuthError {
	return New(KindRevoked, http.StatusUnauthorized, "session has been revoked").
		WithMetadata("access_id", accessID)
}

// ErrIPMismatch reports a token presented from a different network than it was issued to.
func ErrIPMismatch(issuedIP, currentIP string) *AuthError {
	return New(KindIPMismatch, http.StatusUnauthorized, "token presented from a different address than it was issued to").
		WithMetadata("issued_ip", issuedIP).
		WithMetadata("current_ip", currentIP)
}

// ErrConflictingSession reports an access token superseded by a later login.
func ErrConflictingSession() *AuthError {
	return New(KindConflictingSession, http.StatusUnauthorized, "session was superseded by a newer login")
}

// ErrRefreshEmpty reports a refresh attempt with no server-side RefreshRecord.
func ErrRefreshEmpty() *AuthError {
	return New(KindRefreshEmpty, http.StatusUnauthorized, "no refresh session exists for this account")
}

// ErrRefreshChanged reports a stale refresh token that was already rotated away.
func ErrRefreshChanged() *AuthError {
	return New(KindRefreshChanged, http.StatusUnauthorized, "refresh token was already rotated")
}

// ErrOAuthAppMismatch reports a token issued for a different external application.
func ErrOAuthAppMismatch(expected, actual string) *AuthError {
	return New(KindOAuthAppMismatch, http.StatusUnauthorized, "token was issued for a different application").
		WithMetadata("expected", expected).
		WithMetadata("actual", actual)
}

// ErrPrincipalNotFound reports an unknown account in the user directory.
func ErrPrincipalNotFound(tenantID, username string) *AuthError {
	return New(KindPrincipalNotFound, http.StatusNotFound, "principal not found").
		WithMetadata("tenant_id", tenantID).
		WithMetadata("username", username)
}

// ErrBadCredentials reports failed credential verification during login.
func ErrBadCredentials() *AuthError {
	return New(KindBadCredentials, http.StatusUnauthorized, "invalid credentials")
}

// ErrInvalidRequest reports a malformed request.
func ErrInvalidRequest(message string) *AuthError {
	return New(KindInvalidRequest, http.StatusBadRequest, message)
}

// ErrInternal wraps an unexpected server-side failure.
func ErrInternal(message string, cause error) *AuthError {
	return New(KindInternal, http.StatusInternalServerError, message).WithCause(cause)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// AsAuthError attempts to cast an error to *AuthError.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// KindOf returns the failure kind of err. Non-AuthError values are treated as
// internal failures so that unexpected store or codec faults never widen
// access (fail closed).
func KindOf(err error) Kind {
	if authErr, ok := AsAuthError(err); ok {
		return authErr.Kind()
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatusOf returns the transport status for err, defaulting unknown errors
// to 401 at authentication boundaries is the caller's job; plain errors map to 500.
func HTTPStatusOf(err error) int {
	if authErr, ok := AsAuthError(err); ok {
		return authErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ================================================================================
// Error Response Body
// ================================================================================

// ErrorResponse is the JSON error body written at the HTTP boundary.
type ErrorResponse struct {
	Error    string                 `json:"error"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to the wire error body. Internal causes
// are never leaked; only the kind and the stable message cross the boundary.
func ToErrorResponse(err error) *ErrorResponse {
	if authErr, ok := AsAuthError(err); ok {
		return &ErrorResponse{
			Error:    string(authErr.Kind()),
			Message:  authErr.Message(),
			Metadata: authErr.Metadata(),
		}
	}
	return &ErrorResponse{
		Error:   string(KindInternal),
		Message: "an unexpected error occurred",
	}
}
