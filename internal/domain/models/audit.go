package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tokengate/tokengate/pkg/constants"
)

// AuditEvent is a single audit trail entry published for token lifecycle
// operations.
type AuditEvent struct {
	EventID   string                   `json:"event_id"`
	EventType constants.AuditEventType `json:"event_type"`
	TenantID  string                   `json:"tenant_id"`
	AuthType  string                   `json:"auth_type,omitempty"`
	Account   string                   `json:"account,omitempty"`
	AccessID  string                   `json:"access_id,omitempty"`
	Result    string                   `json:"result"`
	Reason    string                   `json:"reason,omitempty"`
	ClientIP  string                   `json:"client_ip,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// NewAuditEvent creates an audit entry stamped with a fresh event id.
func NewAuditEvent(eventType constants.AuditEventType, tenantID, authType, account string) *AuditEvent {
	return &AuditEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		TenantID:  tenantID,
		AuthType:  authType,
		Account:   account,
		Result:    "success",
		Timestamp: time.Now().UTC(),
	}
}

// WithResult sets the outcome and an optional reason.
func (e *AuditEvent) WithResult(result, reason string) *AuditEvent {
	e.Result = result
	e.Reason = reason
	return e
}

// WithAccessID attaches the per-issuance identifier involved.
func (e *AuditEvent) WithAccessID(accessID string) *AuditEvent {
	e.AccessID = accessID
	return e
}

// WithClientIP attaches the caller's address.
func (e *AuditEvent) WithClientIP(ip string) *AuditEvent {
	e.ClientIP = ip
	return e
}
