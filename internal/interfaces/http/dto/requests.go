// Package dto holds the HTTP request and response shapes.
package dto

// LoginRequest authenticates an account and opens a session.
type LoginRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`

	// AuthType names the session family; empty selects the default.
	AuthType string `json:"authType"`

	// OAuthID and OAuthName scope the session to an external application.
	OAuthID   string `json:"oauthId"`
	OAuthName string `json:"oauthName"`
}

// RefreshRequest rotates a refresh token into a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RevokeAccessRequest removes one access session by key (admin surface).
type RevokeAccessRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	AuthType string `json:"authType" binding:"required"`
	Account  string `json:"account" binding:"required"`
	AccessID string `json:"accessId" binding:"required"`
}

// RevokeRefreshRequest removes an account's refresh session (admin surface).
type RevokeRefreshRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	AuthType string `json:"authType" binding:"required"`
	Account  string `json:"account" binding:"required"`

	// OAuthAppID, when set, targets the account's oauth session instead.
	OAuthAppID string `json:"oauthAppId"`
}
