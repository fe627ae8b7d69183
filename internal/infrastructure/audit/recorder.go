package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
)

// Sink persists audit events durably.
type Sink interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// Recorder writes every event to the durable sink and mirrors it to the
// event publisher. Neither destination may fail the audited action, so
// trouble is only logged.
type Recorder struct {
	sink      Sink
	publisher ports.EventPublisher
}

func NewRecorder(sink Sink, publisher ports.EventPublisher) *Recorder {
	return &Recorder{sink: sink, publisher: publisher}
}

func (r *Recorder) Record(ctx context.Context, event domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Severity == "" {
		event.Severity = domain.AuditSeverityInfo
	}

	slog.Info("audit_event",
		"action", event.Action,
		"actor", event.Actor,
		"document_id", event.DocumentID,
		"severity", event.Severity,
	)

	if r.sink != nil {
		if err := r.sink.Insert(ctx, event); err != nil {
			slog.Warn("audit_sink_failed", "action", event.Action, "error", err)
		}
	}

	if r.publisher != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			slog.Warn("audit_event_marshal_failed", "action", event.Action, "error", err)
			return
		}
		if err := r.publisher.PublishAuditEvent(ctx, payload); err != nil {
			slog.Warn("audit_publish_failed", "action", event.Action, "error", err)
		}
	}
}
