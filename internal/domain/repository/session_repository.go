// Package repository defines the persistence contracts the domain layer
// depends on. Implementations live under internal/infrastructure.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tokengate/tokengate/internal/domain/models"
)

// ErrKeyNotFound is returned by SessionStore.Get and TTL when the key does
// not exist. The registry translates it into a nil record; the service layer
// decides what an absent record means for the protocol.
var ErrKeyNotFound = errors.New("session store: key not found")

// SessionStore is the thin keyed-storage abstraction backing persisted
// session records. Individual operations are atomic at the store level;
// multi-key sequences are not transactional.
type SessionStore interface {
	// Get returns the value at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put writes value at key with the given TTL. A zero TTL persists the
	// key without expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key under prefix and returns the count.
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)

	// ListByPrefix returns every key/value pair under prefix.
	ListByPrefix(ctx context.Context, prefix string) (map[string]string, error)

	// TTL returns the remaining lifetime of key, or ErrKeyNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies store connectivity for readiness checks.
	Ping(ctx context.Context) error
}

// SessionRegistry provides typed CRUD over the three record families. Get
// operations return (nil, nil) for absent records; errors are reserved for
// store faults and undecodable payloads.
type SessionRegistry interface {
	// PutAccess persists an AccessRecord with the access-expiry TTL.
	PutAccess(ctx context.Context, record *models.AccessRecord, ttl time.Duration) error

	// GetAccess loads one AccessRecord by its full key.
	GetAccess(ctx context.Context, tenant, authType, account, accessID string) (*models.AccessRecord, error)

	// RevokeAccessFlag flips the record's revoked flag in place, preserving
	// its remaining TTL.
	RevokeAccessFlag(ctx context.Context, tenant, authType, account, accessID string) error

	// DeleteAccess removes one AccessRecord.
	DeleteAccess(ctx context.Context, tenant, authType, account, accessID string) error

	// DeleteAccessesByAccount removes every AccessRecord of the account.
	DeleteAccessesByAccount(ctx context.Context, tenant, authType, account string) (int64, error)

	// PutRefresh persists the account's RefreshRecord with the refresh-expiry TTL.
	PutRefresh(ctx context.Context, record *models.RefreshRecord, ttl time.Duration) error

	// GetRefresh loads the account's RefreshRecord.
	GetRefresh(ctx context.Context, tenant, authType, account string) (*models.RefreshRecord, error)

	// DeleteRefresh removes the account's RefreshRecord.
	DeleteRefresh(ctx context.Context, tenant, authType, account string) error

	// PutOAuth persists an OAuthRecord with the refresh-expiry TTL.
	PutOAuth(ctx context.Context, record *models.OAuthRecord, ttl time.Duration) error

	// GetOAuth loads the account's OAuthRecord for one external application.
	GetOAuth(ctx context.Context, tenant, authType, account, oauthAppID string) (*models.OAuthRecord, error)

	// DeleteOAuth removes the account's OAuthRecord for one external application.
	DeleteOAuth(ctx context.Context, tenant, authType, account, oauthAppID string) error

	// DeleteOAuthByAccount removes every OAuthRecord of the account.
	DeleteOAuthByAccount(ctx context.Context, tenant, authType, account string) (int64, error)

	// ListAccess returns every AccessRecord of a tenant for audit listing.
	ListAccess(ctx context.Context, tenant string) ([]*models.AccessRecord, error)

	// ListRefresh returns every RefreshRecord of a tenant.
	ListRefresh(ctx context.Context, tenant string) ([]*models.RefreshRecord, error)

	// ListOAuth returns every OAuthRecord of a tenant.
	ListOAuth(ctx context.Context, tenant string) ([]*models.OAuthRecord, error)
}
