package models

import "time"

// Revocation flag values stored on an AccessRecord. The flag is an integer in
// the stored form so flipping it never changes the record shape.
const (
	// AccessActive marks a live record.
	AccessActive = 0

	// AccessRevoked marks a record that has been revoked in place, preserving
	// its remaining TTL (shared-device logout).
	AccessRevoked = 1
)

// AccessRecord is the server-side mirror of one access-token issuance, keyed
// by (tenant, authType, account, accessId). It exists only for stateful
// sessions (accessValid=true) and is deleted on rotation, explicit revoke, or
// natural TTL expiry.
type AccessRecord struct {
	Claims   Claims    `json:"claims"`
	Revoked  int       `json:"revoked"`
	IssuedIP string    `json:"issuedIp,omitempty"`
	IssuedAt time.Time `json:"issuedAt"`
}

// IsRevoked reports whether the record was revoked in place.
func (r *AccessRecord) IsRevoked() bool {
	return r.Revoked == AccessRevoked
}

// TenantID returns the tenant segment of the record's key.
func (r *AccessRecord) TenantID() string { return r.Claims.TenantID }

// AuthType returns the session-family segment of the record's key.
func (r *AccessRecord) AuthType() string { return r.Claims.AuthType }

// Account returns the account segment of the record's key.
func (r *AccessRecord) Account() string { return r.Claims.Account() }

// AccessID returns the per-issuance segment of the record's key.
func (r *AccessRecord) AccessID() string { return r.Claims.AccessID }

// RefreshRecord is the single refresh session of one account, keyed by
// (tenant, authType, account). It carries the reusable principal claims so
// rotation can re-issue without consulting the principal loader, and points
// at the access record issued most recently against it.
type RefreshRecord struct {
	TenantID string `json:"tenantId"`
	AuthType string `json:"authType"`
	Account  string `json:"account"`

	// RefreshID is regenerated on every rotation; a presented refresh token
	// whose id no longer matches was rotated away.
	RefreshID string `json:"refreshId"`

	// CurrentAccessID points at the access record this refresh session
	// issued last. Rotation deletes it before issuing the replacement.
	CurrentAccessID string `json:"currentAccessId"`

	AccessUnique bool `json:"accessUnique"`
	AccessValid  bool `json:"accessValid"`

	// Claims is the principal payload carried over into each re-issuance.
	Claims Claims `json:"claims"`

	IssuedAt time.Time `json:"issuedAt"`
}

// OAuthRecord has the identical shape of a RefreshRecord but is keyed
// additionally by the issuing external application id, so one account can
// hold concurrent sessions with several authorized applications.
type OAuthRecord struct {
	RefreshRecord

	// OAuthID is the external application segment of the record's key.
	OAuthID   string `json:"oauthId"`
	OAuthName string `json:"oauthName,omitempty"`
}
