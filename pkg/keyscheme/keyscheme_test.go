package keyscheme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessKeyLayout(t *testing.T) {
	key := AccessKey("gate", "t1", "default", "alice", "acc-1")
	assert.Equal(t, "gate:auth:t1:access:default:alice:acc-1", key)
}

func TestRefreshKeyLayout(t *testing.T) {
	key := RefreshKey("gate", "t1", "default", "alice")
	assert.Equal(t, "gate:auth:t1:refresh:default:alice", key)
}

func TestOAuthKeyLayout(t *testing.T) {
	key := OAuthKey("gate", "t1", "default", "alice", "app-9")
	assert.Equal(t, "gate:auth:t1:oauth:default:alice:app-9", key)
}

func TestPrefixesEndWithSeparator(t *testing.T) {
	prefixes := []string{
		AccessPrefix("gate", "t1", "default", "alice"),
		AccessTenantPrefix("gate", "t1"),
		RefreshTenantPrefix("gate", "t1"),
		OAuthPrefix("gate", "t1", "default", "alice"),
		OAuthTenantPrefix("gate", "t1"),
	}
	for _, prefix := range prefixes {
		assert.True(t, strings.HasSuffix(prefix, Separator), "prefix %q must end with separator", prefix)
	}
}

func TestAccessKeyUnderAccountPrefix(t *testing.T) {
	prefix := AccessPrefix("gate", "t1", "default", "alice")
	key := AccessKey("gate", "t1", "default", "alice", "acc-1")
	assert.True(t, strings.HasPrefix(key, prefix))

	// A sibling account must not fall under the prefix.
	other := AccessKey("gate", "t1", "default", "alice2", "acc-1")
	assert.False(t, strings.HasPrefix(other, prefix))
}

func TestValidField(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  bool
	}{
		{"plain", "alice", true},
		{"empty", "", false},
		{"separator inside", "ali:ce", false},
		{"separator only", ":", false},
		{"unicode", "björn", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidField(tt.field))
		})
	}
}

func TestValidFields(t *testing.T) {
	assert.True(t, ValidFields("t1", "default", "alice"))
	assert.False(t, ValidFields("t1", "", "alice"))
	assert.False(t, ValidFields("t1", "def:ault", "alice"))
}
