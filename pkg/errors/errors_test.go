package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    *AuthError
		kind   Kind
		status int
	}{
		{"missing token", ErrMissingToken(), KindMissingToken, http.StatusUnauthorized},
		{"invalid signature", ErrInvalidSignature(), KindInvalidSignature, http.StatusUnauthorized},
		{"expired", ErrExpired("access"), KindExpired, http.StatusUnauthorized},
		{"revoked", ErrRevoked("acc-1"), KindRevoked, http.StatusUnauthorized},
		{"ip mismatch", ErrIPMismatch("1.1.1.1", "2.2.2.2"), KindIPMismatch, http.StatusUnauthorized},
		{"conflicting session", ErrConflictingSession(), KindConflictingSession, http.StatusUnauthorized},
		{"refresh empty", ErrRefreshEmpty(), KindRefreshEmpty, http.StatusUnauthorized},
		{"refresh changed", ErrRefreshChanged(), KindRefreshChanged, http.StatusUnauthorized},
		{"oauth app mismatch", ErrOAuthAppMismatch("a", "b"), KindOAuthAppMismatch, http.StatusUnauthorized},
		{"principal not found", ErrPrincipalNotFound("t1", "alice"), KindPrincipalNotFound, http.StatusNotFound},
		{"bad credentials", ErrBadCredentials(), KindBadCredentials, http.StatusUnauthorized},
		{"invalid request", ErrInvalidRequest("bad"), KindInvalidRequest, http.StatusBadRequest},
		{"forbidden", ErrForbidden("admin"), KindForbidden, http.StatusForbidden},
		{"internal", ErrInternal("boom", nil), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind())
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExpired, KindOf(ErrExpired("access")))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestIsKindThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrRevoked("acc-1"))
	assert.True(t, IsKind(wrapped, KindRevoked))
	assert.False(t, IsKind(wrapped, KindExpired))
}

func TestUnwrapCause(t *testing.T) {
	cause := stderrors.New("redis down")
	err := ErrInvalidSignature().WithCause(cause)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "redis down")
}

func TestToErrorResponseDoesNotLeakCause(t *testing.T) {
	cause := stderrors.New("dial tcp 10.0.0.5:6379: connection refused")
	response := ToErrorResponse(ErrInvalidSignature().WithCause(cause))
	assert.Equal(t, string(KindInvalidSignature), response.Error)
	assert.NotContains(t, response.Message, "10.0.0.5")
}

func TestToErrorResponsePlainError(t *testing.T) {
	response := ToErrorResponse(stderrors.New("secret detail"))
	assert.Equal(t, string(KindInternal), response.Error)
	assert.NotContains(t, response.Message, "secret detail")
}

func TestMetadata(t *testing.T) {
	err := ErrIPMismatch("1.1.1.1", "2.2.2.2")
	assert.Equal(t, "1.1.1.1", err.Metadata()["issued_ip"])
	assert.Equal(t, "2.2.2.2", err.Metadata()["current_ip"])
}
