// Package keyscheme centralizes the store key naming convention so every
// component agrees on how session records are addressed. All functions are
// pure; no field may contain the path separator, which keeps keys unambiguous
// under string-prefix matching.
package keyscheme

import "strings"

// Separator is the path separator used between key segments.
const Separator = ":"

const authSegment = "auth"

const (
	segmentAccess  = "access"
	segmentRefresh = "refresh"
	segmentOAuth   = "oauth"
)

// ValidField reports whether a value may appear as a key segment. Empty
// values and values containing the separator are rejected; callers refuse
// such input at issuance time rather than rewriting it.
func ValidField(field string) bool {
	return field != "" && !strings.Contains(field, Separator)
}

// ValidFields reports whether every given value is a usable key segment.
func ValidFields(fields ...string) bool {
	for _, field := range fields {
		if !ValidField(field) {
			return false
		}
	}
	return true
}

func join(segments ...string) string {
	return strings.Join(segments, Separator)
}

// AccessKey addresses one AccessRecord:
// "{app}:auth:{tenant}:access:{authType}:{account}:{accessId}".
func AccessKey(app, tenant, authType, account, accessID string) string {
	return join(app, authSegment, tenant, segmentAccess, authType, account, accessID)
}

// AccessPrefix covers every AccessRecord of one account, used for cascade
// deletes and uniqueness enforcement.
func AccessPrefix(app, tenant, authType, account string) string {
	return join(app, authSegment, tenant, segmentAccess, authType, account) + Separator
}

// AccessTenantPrefix covers every AccessRecord of one tenant, used for audit
// listing.
func AccessTenantPrefix(app, tenant string) string {
	return join(app, authSegment, tenant, segmentAccess) + Separator
}

// RefreshKey addresses the single RefreshRecord of one account:
// "{app}:auth:{tenant}:refresh:{authType}:{account}".
func RefreshKey(app, tenant, authType, account string) string {
	return join(app, authSegment, tenant, segmentRefresh, authType, account)
}

// RefreshTenantPrefix covers every RefreshRecord of one tenant.
func RefreshTenantPrefix(app, tenant string) string {
	return join(app, authSegment, tenant, segmentRefresh) + Separator
}

// OAuthKey addresses one OAuthRecord:
// "{app}:auth:{tenant}:oauth:{authType}:{account}:{oauthAppId}".
func OAuthKey(app, tenant, authType, account, oauthAppID string) string {
	return join(app, authSegment, tenant, segmentOAuth, authType, account, oauthAppID)
}

// OAuthPrefix covers every OAuthRecord of one account across external
// applications.
func OAuthPrefix(app, tenant, authType, account string) string {
	return join(app, authSegment, tenant, segmentOAuth, authType, account) + Separator
}

// OAuthTenantPrefix covers every OAuthRecord of one tenant.
func OAuthTenantPrefix(app, tenant string) string {
	return join(app, authSegment, tenant, segmentOAuth) + Separator
}
