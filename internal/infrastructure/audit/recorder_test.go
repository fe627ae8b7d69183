package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

type sinkFake struct {
	events []domain.AuditEvent
	err    error
}

func (f *sinkFake) Insert(_ context.Context, event domain.AuditEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type publisherFake struct {
	payloads [][]byte
	err      error
}

func (f *publisherFake) PublishAuditEvent(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestRecordFillsDefaultsAndFansOut(t *testing.T) {
	sink := &sinkFake{}
	publisher := &publisherFake{}
	recorder := NewRecorder(sink, publisher)

	recorder.Record(context.Background(), domain.AuditEvent{
		Action:     domain.AuditActionUpload,
		DocumentID: "plan",
	})

	if len(sink.events) != 1 {
		t.Fatalf("expected sink insert, got %d", len(sink.events))
	}
	stored := sink.events[0]
	if stored.ID == "" || stored.CreatedAt.IsZero() || stored.Severity != domain.AuditSeverityInfo {
		t.Fatalf("expected defaults filled, got %+v", stored)
	}

	if len(publisher.payloads) != 1 {
		t.Fatalf("expected published payload, got %d", len(publisher.payloads))
	}
	var mirrored domain.AuditEvent
	if err := json.Unmarshal(publisher.payloads[0], &mirrored); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if mirrored.DocumentID != "plan" {
		t.Fatalf("unexpected mirrored event %+v", mirrored)
	}
}

func TestRecordSurvivesFailingDestinations(t *testing.T) {
	recorder := NewRecorder(&sinkFake{err: errors.New("db down")}, &publisherFake{err: errors.New("nats down")})

	recorder.Record(context.Background(), domain.AuditEvent{Action: domain.AuditActionDelete})
}

func TestRecordWithoutDestinations(t *testing.T) {
	recorder := NewRecorder(nil, nil)

	recorder.Record(context.Background(), domain.AuditEvent{Action: domain.AuditActionSearch})
}
