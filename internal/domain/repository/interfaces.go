package repository

import (
	"context"
	"time"

	"TradeGate/internal/domain/models"
)

// QueryExecutor is the external parameterized-query collaborator. Every
// call is issued with readonly semantics; query text uses positional `?`
// placeholders bound strictly in argument order.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, params []interface{}) (*models.ResultSet, error)
}

// IdentityProvider resolves the authenticated caller identity for CLIENT
// context requests. The identity is never accepted as caller input.
type IdentityProvider interface {
	CurrentClientIdentity() (string, bool)
}

// AuditSink receives access-audit events. Implementations must not block
// the request path on delivery guarantees.
type AuditSink interface {
	Publish(ctx context.Context, event *models.AuditEvent) error
}

// Metrics records operational metrics for the query layer.
type Metrics interface {
	RecordOperation(operation, context, outcome string)
	RecordGateRejection()
	RecordExecutorError(operation string)
	ObserveExecutorDuration(operation string, d time.Duration)
}
