package sqlxrepos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/ChristopherDeLaRosa/academia/core"
)

// auditSink appends audit records to the audit_log table. Failures are
// logged and swallowed: audit is a side effect, never a reason to fail the
// mutation that produced it.
type auditSink struct {
	db     *sqlx.DB
	logger core.Logger
}

var _ core.AuditSink = (*auditSink)(nil) // interface compliance check

func NewAuditSink(db *sqlx.DB, logger core.Logger) *auditSink {
	return &auditSink{db: db, logger: logger}
}

func (sink *auditSink) Record(ctx context.Context, actorID, action, entityType, entityID string, payload map[string]interface{}) {
	var payloadJSON null.JSON
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			sink.logger.Error("marshaling audit payload", err)
			return
		}
		payloadJSON = null.JSONFrom(raw)
	}

	_, err := sink.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor_id, action, entity_type, entity_id, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		actorID, action, entityType, null.NewString(entityID, entityID != ""), payloadJSON)
	if err != nil {
		sink.logger.Error("recording audit entry", err)
	}
}
