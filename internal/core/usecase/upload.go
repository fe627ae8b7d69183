package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
	"github.com/hmoralesr/document-intake/internal/observability/metrics"
)

// MaxUploadBytes caps accepted uploads; larger bodies are rejected before
// any processing begins.
const MaxUploadBytes = 50 << 20

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".pptx": {},
	".xlsx": {},
	".txt":  {},
	".md":   {},
}

const dangerousChars = "<>:\"|?*"

// UploadDocumentUseCase runs the full intake pipeline for one file:
// validate, dedupe, extract metadata, resolve lineage, store blob, persist
// record, index, audit.
type UploadDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractor  ports.MetadataExtractor
	search     ports.SearchEngine
	audit      ports.AuditLog
	versioning *VersioningService
	metrics    *metrics.Pipeline
	maxBytes   int64
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.MetadataExtractor,
	search ports.SearchEngine,
	audit ports.AuditLog,
	pipelineMetrics *metrics.Pipeline,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		search:     search,
		audit:      audit,
		versioning: NewVersioningService(repo),
		metrics:    pipelineMetrics,
		maxBytes:   MaxUploadBytes,
	}
}

func (uc *UploadDocumentUseCase) Upload(ctx context.Context, req ports.UploadRequest) (*domain.MetadataRecord, error) {
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	hash := hashContent(req.Content)
	existing, err := uc.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check duplicate hash: %w", err)
	}
	if existing != nil {
		return nil, domain.WrapError(
			domain.ErrDuplicateDocument,
			"check duplicate hash",
			fmt.Errorf("content already stored as document %s", existing.ID),
		)
	}

	rec := uc.extractor.ExtractMetadata(ctx, req.Content, req.Filename, req.Track, req.OrgUnit)

	version, parentID, err := uc.versioning.ResolveVersion(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve version: %w", err)
	}
	if parentID != "" {
		rec.ID = VersionedID(parentID, version)
		rec.Version = version
		rec.ParentID = parentID
	}

	rec.Public = req.IsPublic
	rec.UploaderID = req.UploaderID
	rec.MediaType = req.ContentType
	if len(req.ExtraTags) > 0 {
		rec.Tags = req.ExtraTags
	}

	storageName := uniqueStorageName(rec.ID, rec.FileExtension, rec.UploadedAt)
	rec.StoragePath = PlanPath(&rec, storageName)

	if err := uc.storage.Save(ctx, rec.StoragePath, bytes.NewReader(req.Content)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	if err := uc.repo.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("create metadata record: %w", err)
	}

	if rec.ParentID != "" {
		if err := uc.versioning.LinkVersion(ctx, rec.ParentID, rec.ID); err != nil {
			return nil, fmt.Errorf("register version in lineage: %w", err)
		}
	}

	// The record stays retrievable through the repository even when the
	// search engine refuses it.
	if ok := uc.search.Index(ctx, []domain.MetadataRecord{rec}); !ok {
		uc.metrics.RecordIndexFailure()
		slog.Warn("document_left_unindexed", "document_id", rec.ID)
	}

	uc.metrics.RecordUpload(rec.ProcessedBy, uploadStatus(rec.Error))
	uc.audit.Record(ctx, domain.AuditEvent{
		Actor:      req.UploaderID,
		Action:     domain.AuditActionUpload,
		DocumentID: rec.ID,
		Details: map[string]any{
			"filename": rec.Filename,
			"version":  rec.Version,
			"public":   rec.Public,
		},
		Severity: domain.AuditSeverityInfo,
	})

	return &rec, nil
}

func (uc *UploadDocumentUseCase) validate(req ports.UploadRequest) error {
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("filename is required"))
	}
	if strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, dangerousChars) ||
		strings.ContainsAny(filename, "/\\") {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("filename %q contains forbidden characters", filename))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("extension %q is not allowed", ext))
	}

	if len(req.Content) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("empty file body"))
	}
	if int64(len(req.Content)) > uc.maxBytes {
		return domain.WrapError(
			domain.ErrPayloadTooLarge,
			"validate upload",
			fmt.Errorf("file of %d bytes exceeds the %d byte limit", len(req.Content), uc.maxBytes),
		)
	}
	return nil
}

func uploadStatus(recordError string) string {
	if recordError != "" {
		return "ai_error"
	}
	return "ok"
}

func uniqueStorageName(id, ext string, when time.Time) string {
	if when.IsZero() {
		when = time.Now().UTC()
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s_%s_%s%s", id, when.Format("20060102150405"), suffix, ext)
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
