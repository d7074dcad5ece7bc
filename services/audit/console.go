package auditsvc

import (
	"context"
	"fmt"

	"github.com/ChristopherDeLaRosa/academia/core"
)

// consoleSink logs audit records through the app logger. Used in DEV and by
// tests; production wires the database-backed sink instead.
type consoleSink struct {
	logger core.Logger
}

var _ core.AuditSink = (*consoleSink)(nil)

func NewConsoleSink(logger core.Logger) *consoleSink {
	return &consoleSink{logger: logger}
}

func (sink *consoleSink) Record(_ context.Context, actorID, action, entityType, entityID string, payload map[string]interface{}) {
	sink.logger.Info(
		fmt.Sprintf("audit: %s %s %s/%s", actorID, action, entityType, entityID),
		payload,
	)
}
