// Package models defines the domain models for the tokengate service: the
// claims payload carried inside signed tokens and the server-side session
// records that back revocation, uniqueness and IP-binding.
package models

// Claims is the structured payload carried inside a signed access token.
// Nothing in it is trusted until the signature and, for stateful sessions,
// the server-side record have been checked.
type Claims struct {
	// TenantID identifies the tenant the session belongs to.
	TenantID string `json:"tenantId"`

	// AuthType is the caller-defined session family ("default", "ldap",
	// "oauth", ...). Independent families never interfere with each other.
	AuthType string `json:"authType"`

	// AccessID is the opaque per-issuance identifier, regenerated on every
	// issuance and rotation.
	AccessID string `json:"accessId"`

	// RefreshID pairs the access token with the refresh token issued
	// alongside it. Empty in access-only mode.
	RefreshID string `json:"refreshId,omitempty"`

	// AccessUnique restricts the account to one live session per
	// (tenant, authType, account) when true.
	AccessUnique bool `json:"accessUnique"`

	// AccessValid marks the session as stateful: the token is additionally
	// checked against a server-side record. When false the token is accepted
	// purely on signature and expiry and cannot be revoked early.
	AccessValid bool `json:"accessValid"`

	// AccessIP is the address recorded at issuance time, used for IP-binding.
	AccessIP string `json:"accessIp,omitempty"`

	// Principal attributes resolved by the principal loader.
	UserID      string   `json:"userId,omitempty"`
	UserCode    string   `json:"userCode,omitempty"`
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	DeptID   string `json:"deptId,omitempty"`
	DeptCode string `json:"deptCode,omitempty"`
	DeptName string `json:"deptName,omitempty"`

	ClusterID    string `json:"clusterId,omitempty"`
	ClusterLevel string `json:"clusterLevel,omitempty"`
	ClusterName  string `json:"clusterName,omitempty"`

	// UserProperties carries free-form attributes attached by the principal
	// loader.
	UserProperties map[string]string `json:"userProperties,omitempty"`

	// OAuthID and OAuthName identify the external application the session
	// was authorized for. Empty outside the oauth variant.
	OAuthID   string `json:"oauthId,omitempty"`
	OAuthName string `json:"oauthName,omitempty"`
}

// Account returns the natural key of the principal within (tenant, authType).
func (c *Claims) Account() string {
	return c.Username
}

// HasRole reports whether the principal carries the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the principal carries the given permission.
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so issuance can mutate identifiers without
// aliasing the caller's claims.
func (c *Claims) Clone() *Claims {
	clone := *c
	if c.Roles != nil {
		clone.Roles = append([]string(nil), c.Roles...)
	}
	if c.Permissions != nil {
		clone.Permissions = append([]string(nil), c.Permissions...)
	}
	if c.UserProperties != nil {
		clone.UserProperties = make(map[string]string, len(c.UserProperties))
		for k, v := range c.UserProperties {
			clone.UserProperties[k] = v
		}
	}
	return &clone
}

// RefreshClaims is the reduced payload carried inside a signed refresh token.
// Refresh tokens carry no expiry claim; their lifetime is enforced entirely
// by the paired RefreshRecord's TTL in the store.
type RefreshClaims struct {
	TenantID     string `json:"tenantId"`
	AuthType     string `json:"authType"`
	RefreshID    string `json:"refreshId"`
	Username     string `json:"username"`
	AccessUnique bool   `json:"accessUnique"`
	AccessValid  bool   `json:"accessValid"`
	OAuthID      string `json:"oauthId,omitempty"`
}

// Account returns the natural key of the principal within (tenant, authType).
func (c *RefreshClaims) Account() string {
	return c.Username
}

// TokenPair is what issuance and rotation return: the signed access token and
// its paired refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}
