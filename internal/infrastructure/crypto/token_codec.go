// Package crypto implements the signed-token codec on HMAC-SHA256 JWTs.
package crypto

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/pkg/errors"
)

// accessTokenClaims is the on-wire access token payload: the full principal
// claims plus the registered expiry.
type accessTokenClaims struct {
	models.Claims
	jwt.RegisteredClaims
}

// refreshTokenClaims is the on-wire refresh token payload. It deliberately
// carries no ExpiresAt: refresh lifetime lives in the store record's TTL.
type refreshTokenClaims struct {
	models.RefreshClaims
	jwt.RegisteredClaims
}

var _ service.TokenCodec = (*jwtCodec)(nil)

type jwtCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

// NewJWTCodec builds an HS256 codec with independent access and refresh
// signing secrets. A refresh token can therefore never verify as an access
// token, and vice versa.
func NewJWTCodec(accessSecret, refreshSecret, issuer string) service.TokenCodec {
	return &jwtCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
	}
}

func (c *jwtCodec) SignAccess(claims *models.Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	payload := accessTokenClaims{
		Claims: *claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.accessSecret)
	if err != nil {
		return "", errors.ErrInternal("failed to sign access token", err)
	}
	return signed, nil
}

func (c *jwtCodec) VerifyAccess(tokenString string) (*models.Claims, error) {
	payload := &accessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, payload,
		func(t *jwt.Token) (interface{}, error) { return c.accessSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, mapVerifyError(err, "access")
	}
	if !token.Valid {
		return nil, errors.ErrInvalidSignature()
	}
	return &payload.Claims, nil
}

func (c *jwtCodec) SignRefresh(claims *models.RefreshClaims) (string, error) {
	payload := refreshTokenClaims{
		RefreshClaims: *claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   c.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.refreshSecret)
	if err != nil {
		return "", errors.ErrInternal("failed to sign refresh token", err)
	}
	return signed, nil
}

func (c *jwtCodec) VerifyRefresh(tokenString string) (*models.RefreshClaims, error) {
	payload := &refreshTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, payload,
		func(t *jwt.Token) (interface{}, error) { return c.refreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, mapVerifyError(err, "refresh")
	}
	if !token.Valid {
		return nil, errors.ErrInvalidSignature()
	}
	return &payload.RefreshClaims, nil
}

// mapVerifyError narrows jwt parse failures to the two externally visible
// verification outcomes. Anything not provably an expiry is a signature
// failure, fail closed.
func mapVerifyError(err error, tokenType string) error {
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		return errors.ErrExpired(tokenType).WithCause(err)
	}
	return errors.ErrInvalidSignature().WithCause(err)
}
