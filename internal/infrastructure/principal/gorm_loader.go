package principal

import (
	"context"
	stderrors "errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/logger"
)

var _ service.PrincipalLoader = (*GormLoader)(nil)

// GormLoader resolves principals from the user directory. A short-TTL
// in-process cache absorbs repeated lookups during a login burst, and
// singleflight collapses concurrent misses for the same account into one
// query.
type GormLoader struct {
	db    *gorm.DB
	cache *gocache.Cache
	group singleflight.Group
	log   logger.Logger
}

// NewGormLoader builds a loader with the default principal cache TTL.
func NewGormLoader(db *gorm.DB, log logger.Logger) *GormLoader {
	return &GormLoader{
		db:    db,
		cache: gocache.New(constants.PrincipalCacheTTL, 2*constants.PrincipalCacheTTL),
		log:   log.WithComponent("principal_loader"),
	}
}

func (l *GormLoader) LoadPrincipal(ctx context.Context, tenantID, username string) (*models.Principal, error) {
	cacheKey := fmt.Sprintf("%s\x00%s", tenantID, username)
	if cached, ok := l.cache.Get(cacheKey); ok {
		return cached.(*models.Principal), nil
	}

	result, err, _ := l.group.Do(cacheKey, func() (interface{}, error) {
		var user models.User
		err := l.db.WithContext(ctx).
			Where("tenant_id = ? AND username = ?", tenantID, username).
			First(&user).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrPrincipalNotFound(tenantID, username)
			}
			return nil, errors.ErrInternal("failed to query user directory", err)
		}

		principal := &models.Principal{
			Claims:       *user.ToClaims(),
			PasswordHash: user.PasswordHash,
			Disabled:     user.Disabled,
		}
		l.cache.SetDefault(cacheKey, principal)
		return principal, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Principal), nil
}

// Invalidate drops the cached principal, forcing the next lookup to hit the
// directory. Called after admin user mutations.
func (l *GormLoader) Invalidate(tenantID, username string) {
	l.cache.Delete(fmt.Sprintf("%s\x00%s", tenantID, username))
}
