package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/repository"
	"github.com/tokengate/tokengate/pkg/keyscheme"
)

var _ repository.SessionRegistry = (*SessionRegistry)(nil)

// SessionRegistry maps the three record families onto keyed JSON documents.
// The app name is baked in at construction so every key this registry touches
// stays inside one deployment's namespace.
type SessionRegistry struct {
	store repository.SessionStore
	app   string
}

// NewSessionRegistry builds a registry scoped to one application namespace.
func NewSessionRegistry(store repository.SessionStore, app string) *SessionRegistry {
	return &SessionRegistry{store: store, app: app}
}

// ================================================================================
// Access Records
// ================================================================================

func (r *SessionRegistry) PutAccess(ctx context.Context, record *models.AccessRecord, ttl time.Duration) error {
	key := keyscheme.AccessKey(r.app, record.TenantID(), record.AuthType(), record.Account(), record.AccessID())
	return r.put(ctx, key, record, ttl)
}

func (r *SessionRegistry) GetAccess(ctx context.Context, tenant, authType, account, accessID string) (*models.AccessRecord, error) {
	key := keyscheme.AccessKey(r.app, tenant, authType, account, accessID)
	record := &models.AccessRecord{}
	found, err := r.get(ctx, key, record)
	if err != nil || !found {
		return nil, err
	}
	return record, nil
}

func (r *SessionRegistry) RevokeAccessFlag(ctx context.Context, tenant, authType, account, accessID string) error {
	key := keyscheme.AccessKey(r.app, tenant, authType, account, accessID)
	record := &models.AccessRecord{}
	found, err := r.get(ctx, key, record)
	if err != nil {
		return err
	}
	if !found {
		// Nothing to flag; the record already expired or was deleted.
		return nil
	}

	remaining, err := r.store.TTL(ctx, key)
	if err != nil {
		if stderrors.Is(err, repository.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	record.Revoked = models.AccessRevoked
	return r.put(ctx, key, record, remaining)
}

func (r *SessionRegistry) DeleteAccess(ctx context.Context, tenant, authType, account, accessID string) error {
	return r.store.Delete(ctx, keyscheme.AccessKey(r.app, tenant, authType, account, accessID))
}

func (r *SessionRegistry) DeleteAccessesByAccount(ctx context.Context, tenant, authType, account string) (int64, error) {
	return r.store.DeleteByPrefix(ctx, keyscheme.AccessPrefix(r.app, tenant, authType, account))
}

// ================================================================================
// Refresh Records
// ================================================================================

func (r *SessionRegistry) PutRefresh(ctx context.Context, record *models.RefreshRecord, ttl time.Duration) error {
	key := keyscheme.RefreshKey(r.app, record.TenantID, record.AuthType, record.Account)
	return r.put(ctx, key, record, ttl)
}

func (r *SessionRegistry) GetRefresh(ctx context.Context, tenant, authType, account string) (*models.RefreshRecord, error) {
	key := keyscheme.RefreshKey(r.app, tenant, authType, account)
	record := &models.RefreshRecord{}
	found, err := r.get(ctx, key, record)
	if err != nil || !found {
		return nil, err
	}
	return record, nil
}

func (r *SessionRegistry) DeleteRefresh(ctx context.Context, tenant, authType, account string) error {
	return r.store.Delete(ctx, keyscheme.RefreshKey(r.app, tenant, authType, account))
}

// ================================================================================
// OAuth Records
// ================================================================================

func (r *SessionRegistry) PutOAuth(ctx context.Context, record *models.OAuthRecord, ttl time.Duration) error {
	key := keyscheme.OAuthKey(r.app, record.TenantID, record.AuthType, record.Account, record.OAuthID)
	return r.put(ctx, key, record, ttl)
}

func (r *SessionRegistry) GetOAuth(ctx context.Context, tenant, authType, account, oauthAppID string) (*models.OAuthRecord, error) {
	key := keyscheme.OAuthKey(r.app, tenant, authType, account, oauthAppID)
	record := &models.OAuthRecord{}
	found, err := r.get(ctx, key, record)
	if err != nil || !found {
		return nil, err
	}
	return record, nil
}

func (r *SessionRegistry) DeleteOAuth(ctx context.Context, tenant, authType, account, oauthAppID string) error {
	return r.store.Delete(ctx, keyscheme.OAuthKey(r.app, tenant, authType, account, oauthAppID))
}

func (r *SessionRegistry) DeleteOAuthByAccount(ctx context.Context, tenant, authType, account string) (int64, error) {
	return r.store.DeleteByPrefix(ctx, keyscheme.OAuthPrefix(r.app, tenant, authType, account))
}

// ================================================================================
// Tenant Listing
// ================================================================================

func (r *SessionRegistry) ListAccess(ctx context.Context, tenant string) ([]*models.AccessRecord, error) {
	pairs, err := r.store.ListByPrefix(ctx, keyscheme.AccessTenantPrefix(r.app, tenant))
	if err != nil {
		return nil, err
	}
	records := make([]*models.AccessRecord, 0, len(pairs))
	for key, value := range pairs {
		record := &models.AccessRecord{}
		if err := json.Unmarshal([]byte(value), record); err != nil {
			return nil, fmt.Errorf("decode access record %q: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *SessionRegistry) ListRefresh(ctx context.Context, tenant string) ([]*models.RefreshRecord, error) {
	pairs, err := r.store.ListByPrefix(ctx, keyscheme.RefreshTenantPrefix(r.app, tenant))
	if err != nil {
		return nil, err
	}
	records := make([]*models.RefreshRecord, 0, len(pairs))
	for key, value := range pairs {
		record := &models.RefreshRecord{}
		if err := json.Unmarshal([]byte(value), record); err != nil {
			return nil, fmt.Errorf("decode refresh record %q: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *SessionRegistry) ListOAuth(ctx context.Context, tenant string) ([]*models.OAuthRecord, error) {
	pairs, err := r.store.ListByPrefix(ctx, keyscheme.OAuthTenantPrefix(r.app, tenant))
	if err != nil {
		return nil, err
	}
	records := make([]*models.OAuthRecord, 0, len(pairs))
	for key, value := range pairs {
		record := &models.OAuthRecord{}
		if err := json.Unmarshal([]byte(value), record); err != nil {
			return nil, fmt.Errorf("decode oauth record %q: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ================================================================================
// Internal Helpers
// ================================================================================

func (r *SessionRegistry) put(ctx context.Context, key string, record interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record %q: %w", key, err)
	}
	return r.store.Put(ctx, key, string(payload), ttl)
}

// get decodes the record at key into out, reporting absence as (false, nil).
func (r *SessionRegistry) get(ctx context.Context, key string, out interface{}) (bool, error) {
	value, err := r.store.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, repository.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("decode session record %q: %w", key, err)
	}
	return true, nil
}
