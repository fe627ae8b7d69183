package ports

import (
	"context"
	"io"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// UploadRequest carries everything the upload flow needs, independent of
// transport.
type UploadRequest struct {
	Content     []byte
	Filename    string
	ContentType string
	IsPublic    bool
	UploaderID  string
	Track       string
	OrgUnit     string
	ExtraTags   []string
}

// DocumentUploader is the inbound contract for the intake pipeline.
type DocumentUploader interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.MetadataRecord, error)
}

// SearchRequest is the inbound search contract.
type SearchRequest struct {
	Query      string
	Limit      int
	Offset     int
	PublicOnly bool
	Apartado   string
	Extension  string
	Sort       []string
}

// DocumentSearcher answers queries, remotely or via the local fallback.
type DocumentSearcher interface {
	Search(ctx context.Context, req SearchRequest) (*domain.SearchResult, error)
}

// DocumentReader is the inbound read model for stored records.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.MetadataRecord, error)
	List(ctx context.Context, publicOnly bool) ([]domain.MetadataRecord, error)
	ListVersions(ctx context.Context, rootID string) ([]domain.MetadataRecord, error)
	Stats(ctx context.Context) (*domain.CollectionStats, error)
}

// DocumentDownloader streams a stored blob.
type DocumentDownloader interface {
	Download(ctx context.Context, id string) (io.ReadCloser, *domain.MetadataRecord, error)
}

// DocumentDeleter removes a document, its blob and its index entry.
type DocumentDeleter interface {
	Delete(ctx context.Context, id, actor string) error
}
