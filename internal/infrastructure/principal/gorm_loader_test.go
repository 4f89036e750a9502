package principal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/pkg/errors"
	"github.com/tokengate/tokengate/pkg/logger"
)

func openTestDirectory(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "users.db"),
		AutoMigrate: true,
	}
	db, err := OpenDatabase(context.Background(), cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(user).Error)
}

func TestLoadPrincipal(t *testing.T) {
	db := openTestDirectory(t)
	seedUser(t, db, &models.User{
		ID:           "u-1",
		TenantID:     "t1",
		Username:     "alice",
		Nickname:     "Alice",
		PasswordHash: "$2a$04$hash",
		Roles:        "user, admin",
		Permissions:  "sessions:list",
		DeptID:       "d-9",
	})

	loader := NewGormLoader(db, logger.NewNoopLogger())
	principal, err := loader.LoadPrincipal(context.Background(), "t1", "alice")
	require.NoError(t, err)

	assert.Equal(t, "$2a$04$hash", principal.PasswordHash)
	assert.False(t, principal.Disabled)
	assert.Equal(t, "u-1", principal.Claims.UserID)
	assert.Equal(t, []string{"user", "admin"}, principal.Claims.Roles)
	assert.Equal(t, []string{"sessions:list"}, principal.Claims.Permissions)
	assert.Equal(t, "d-9", principal.Claims.DeptID)
}

func TestLoadPrincipalNotFound(t *testing.T) {
	loader := NewGormLoader(openTestDirectory(t), logger.NewNoopLogger())

	_, err := loader.LoadPrincipal(context.Background(), "t1", "nobody")
	assert.True(t, errors.IsKind(err, errors.KindPrincipalNotFound))
}

func TestLoadPrincipalTenantIsolation(t *testing.T) {
	db := openTestDirectory(t)
	seedUser(t, db, &models.User{ID: "u-1", TenantID: "t1", Username: "alice"})

	loader := NewGormLoader(db, logger.NewNoopLogger())
	_, err := loader.LoadPrincipal(context.Background(), "t2", "alice")
	assert.True(t, errors.IsKind(err, errors.KindPrincipalNotFound))
}

func TestLoadPrincipalServesFromCache(t *testing.T) {
	db := openTestDirectory(t)
	seedUser(t, db, &models.User{ID: "u-1", TenantID: "t1", Username: "alice", Nickname: "Alice"})

	loader := NewGormLoader(db, logger.NewNoopLogger())
	_, err := loader.LoadPrincipal(context.Background(), "t1", "alice")
	require.NoError(t, err)

	// The row changes underneath; the cached principal still answers.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "u-1").Update("nickname", "Changed").Error)
	principal, err := loader.LoadPrincipal(context.Background(), "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", principal.Claims.Nickname)

	// Invalidation forces the next lookup back to the directory.
	loader.Invalidate("t1", "alice")
	principal, err = loader.LoadPrincipal(context.Background(), "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Changed", principal.Claims.Nickname)
}
