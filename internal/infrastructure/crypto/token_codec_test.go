package crypto

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/pkg/errors"
)

const (
	testAccessSecret  = "access-secret-for-tests-0123456789"
	testRefreshSecret = "refresh-secret-for-tests-987654321"
)

func newTestCodec() *jwtCodec {
	return NewJWTCodec(testAccessSecret, testRefreshSecret, "tokengate-test").(*jwtCodec)
}

func testClaims() *models.Claims {
	return &models.Claims{
		TenantID:     "t1",
		AuthType:     "default",
		AccessID:     "acc-1",
		RefreshID:    "ref-1",
		AccessUnique: true,
		AccessValid:  true,
		AccessIP:     "10.0.0.1",
		UserID:       "u-1",
		Username:     "alice",
		Roles:        []string{"admin"},
	}
}

func TestAccessRoundTrip(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.SignAccess(testClaims(), time.Minute)
	require.NoError(t, err)

	decoded, err := codec.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "t1", decoded.TenantID)
	assert.Equal(t, "acc-1", decoded.AccessID)
	assert.Equal(t, "ref-1", decoded.RefreshID)
	assert.Equal(t, "10.0.0.1", decoded.AccessIP)
	assert.True(t, decoded.AccessUnique)
	assert.Equal(t, []string{"admin"}, decoded.Roles)
}

func TestAccessTamperedPayloadRejected(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.SignAccess(testClaims(), time.Minute)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	// Flip a character in the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = codec.VerifyAccess(tampered)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSignature))
}

func TestAccessExpired(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.SignAccess(testClaims(), -time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.True(t, errors.IsKind(err, errors.KindExpired))
}

func TestAccessWrongSecretRejected(t *testing.T) {
	codec := newTestCodec()
	other := NewJWTCodec("a-completely-different-secret-value", testRefreshSecret, "tokengate-test")

	signed, err := other.SignAccess(testClaims(), time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSignature))
}

func TestRefreshRoundTrip(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.SignRefresh(&models.RefreshClaims{
		TenantID:     "t1",
		AuthType:     "default",
		RefreshID:    "ref-1",
		Username:     "alice",
		AccessUnique: true,
		AccessValid:  true,
	})
	require.NoError(t, err)

	decoded, err := codec.VerifyRefresh(signed)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", decoded.RefreshID)
	assert.Equal(t, "alice", decoded.Account())
}

func TestRefreshTokenNeverExpiresByClaim(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.SignRefresh(&models.RefreshClaims{
		TenantID:  "t1",
		AuthType:  "default",
		RefreshID: "ref-1",
		Username:  "alice",
	})
	require.NoError(t, err)

	// Lifetime is bounded by the store record TTL, not by a claim, so
	// verification succeeds regardless of elapsed time.
	decoded, err := codec.VerifyRefresh(signed)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", decoded.RefreshID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	codec := newTestCodec()

	access, err := codec.SignAccess(testClaims(), time.Minute)
	require.NoError(t, err)
	refresh, err := codec.SignRefresh(&models.RefreshClaims{TenantID: "t1", RefreshID: "ref-1", Username: "alice"})
	require.NoError(t, err)

	_, err = codec.VerifyRefresh(access)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSignature))
	_, err = codec.VerifyAccess(refresh)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSignature))
}
