package audit

import (
	"context"

	"github.com/tokengate/tokengate/internal/domain/models"
	"github.com/tokengate/tokengate/internal/domain/service"
)

var _ service.AuditService = (*NoopPublisher)(nil)

// NoopPublisher discards events. Used when audit publishing is disabled and
// in tests.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(context.Context, *models.AuditEvent) {}

func (*NoopPublisher) Close() error { return nil }
