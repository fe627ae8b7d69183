package ports

import (
	"context"
	"io"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// DocumentRepository persists and reads metadata records.
type DocumentRepository interface {
	Create(ctx context.Context, rec *domain.MetadataRecord) error
	GetByID(ctx context.Context, id string) (*domain.MetadataRecord, error)
	GetByHash(ctx context.Context, hash string) (*domain.MetadataRecord, error)
	ListAll(ctx context.Context, publicOnly bool) ([]domain.MetadataRecord, error)
	AppendVersion(ctx context.Context, parentID, childID string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores source document blobs under planner-produced keys.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// SearchEngine is the remote full-text index. Implementations report their
// own health so callers can decide whether to fall back locally.
type SearchEngine interface {
	Healthy(ctx context.Context) bool
	Index(ctx context.Context, docs []domain.MetadataRecord) bool
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
	Remove(ctx context.Context, documentID string) error
}

// MetadataExtractor turns raw file bytes into a metadata record. It never
// fails: provider or parse trouble yields a placeholder record instead.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, content []byte, filename, track, orgUnit string) domain.MetadataRecord
}

// AuditLog records user-visible actions. Failures are advisory only and must
// never abort the action being audited.
type AuditLog interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

// EventPublisher mirrors audit events to interested consumers.
type EventPublisher interface {
	PublishAuditEvent(ctx context.Context, payload []byte) error
}

// TokenVerifier validates bearer credentials on protected endpoints.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (actor string, err error)
}
