package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// AuditRepository persists the audit trail. Schema lives in
// DocumentRepository.EnsureSchema.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Severity == "" {
		event.Severity = domain.AuditSeverityInfo
	}

	detailsJSON, err := marshalMap(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO audit_events (id, actor, action, document_id, details, severity, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		event.ID, event.Actor, event.Action, event.DocumentID, detailsJSON, event.Severity, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns the latest events, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, actor, action, document_id, details, severity, created_at
FROM audit_events
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		var detailsRaw []byte
		if err := rows.Scan(&event.ID, &event.Actor, &event.Action, &event.DocumentID, &detailsRaw, &event.Severity, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if err := json.Unmarshal(detailsRaw, &event.Details); err != nil {
			return nil, fmt.Errorf("unmarshal audit details: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
