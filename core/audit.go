package core

import "context"

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionBulk   = "bulk_upsert"
)

// AuditSink receives a record after every successful mutating call.
// It is a write-only side-effect: implementations must never fail the
// mutation that triggered them.
type AuditSink interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, payload map[string]interface{})
}
