package domain

import "time"

// MetadataRecord is the canonical description of an ingested document. It is
// what the API returns, what the repository persists and what the search
// engine indexes.
type MetadataRecord struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	FileExtension string `json:"file_extension"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	MediaType     string `json:"media_type"`
	FileHash      string `json:"file_hash"`

	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Date     string   `json:"date"`

	StoragePath string   `json:"storage_path"`
	Public      bool     `json:"public"`
	UploaderID  string   `json:"uploader_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Classification-track fields, present only when a track was supplied.
	Apartado              string         `json:"apartado,omitempty"`
	Track                 string         `json:"track,omitempty"`
	OrgUnit               string         `json:"org_unit,omitempty"`
	EstrategiaRelacionada string         `json:"estrategia_relacionada,omitempty"`
	TipoDocumento         string         `json:"tipo_documento,omitempty"`
	PuestoResponsable     string         `json:"puesto_responsable,omitempty"`
	MetadatosEspecificos  map[string]any `json:"metadatos_especificos,omitempty"`

	Version  int      `json:"version"`
	ParentID string   `json:"parent_id,omitempty"`
	Versions []string `json:"versions"`

	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ProcessedBy string    `json:"processed_by,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// IsVersionRoot reports whether the record heads its own lineage.
func (r *MetadataRecord) IsVersionRoot() bool {
	return r.ParentID == ""
}

// SearchQuery is a transport-independent search request.
type SearchQuery struct {
	Query  string
	Filter string
	Sort   []string
	Limit  int
	Offset int
}

const (
	SourceSearchEngine  = "search-engine"
	SourceLocalFallback = "local-fallback"
)

// SearchResult carries one page of hits plus the origin of the data.
type SearchResult struct {
	Hits               []MetadataRecord `json:"hits"`
	EstimatedTotalHits int              `json:"estimatedTotalHits"`
	Limit              int              `json:"limit"`
	Offset             int              `json:"offset"`
	Source             string           `json:"source"`
}

// CollectionStats summarizes the stored corpus.
type CollectionStats struct {
	TotalDocuments   int            `json:"total_documents"`
	PublicDocuments  int            `json:"public_documents"`
	PrivateDocuments int            `json:"private_documents"`
	ByExtension      map[string]int `json:"by_extension"`
}

// AuditEvent is a best-effort trace of a user-visible action.
type AuditEvent struct {
	ID         string         `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	DocumentID string         `json:"document_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Severity   string         `json:"severity"`
	CreatedAt  time.Time      `json:"created_at"`
}

const (
	AuditActionUpload   = "document.upload"
	AuditActionDownload = "document.download"
	AuditActionDelete   = "document.delete"
	AuditActionSearch   = "document.search"
	AuditActionError    = "document.error"

	AuditSeverityInfo  = "info"
	AuditSeverityWarn  = "warn"
	AuditSeverityError = "error"
)
