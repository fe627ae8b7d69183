package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
)

// DocumentService covers the read, download and delete surface over stored
// records.
type DocumentService struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	search  ports.SearchEngine
	audit   ports.AuditLog
}

func NewDocumentService(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	search ports.SearchEngine,
	audit ports.AuditLog,
) *DocumentService {
	return &DocumentService{
		repo:    repo,
		storage: storage,
		search:  search,
		audit:   audit,
	}
}

func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.MetadataRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, publicOnly bool) ([]domain.MetadataRecord, error) {
	records, err := s.repo.ListAll(ctx, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records, nil
}

// ListVersions returns the lineage of rootID: the root record first, then its
// children ordered by version number. Dangling version entries are skipped.
func (s *DocumentService) ListVersions(ctx context.Context, rootID string) ([]domain.MetadataRecord, error) {
	root, err := s.repo.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}

	lineage := []domain.MetadataRecord{*root}
	children := make([]domain.MetadataRecord, 0, len(root.Versions))
	for _, versionID := range root.Versions {
		child, err := s.repo.GetByID(ctx, versionID)
		if err != nil {
			if domain.IsKind(err, domain.ErrDocumentNotFound) {
				slog.Warn("dangling_version_entry", "root_id", rootID, "version_id", versionID)
				continue
			}
			return nil, fmt.Errorf("load version %s: %w", versionID, err)
		}
		children = append(children, *child)
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Version < children[j].Version
	})
	return append(lineage, children...), nil
}

func (s *DocumentService) Download(ctx context.Context, id string) (io.ReadCloser, *domain.MetadataRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := s.storage.Open(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob for %s: %w", id, err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditActionDownload,
		DocumentID: rec.ID,
		Details:    map[string]any{"filename": rec.Filename},
		Severity:   domain.AuditSeverityInfo,
	})
	return blob, rec, nil
}

// Delete removes the record and its blob. The index entry is removed on a
// best-effort basis: a failing search engine never blocks the delete.
func (s *DocumentService) Delete(ctx context.Context, id, actor string) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, rec.StoragePath); err != nil {
		// An already-missing blob should not keep the record alive.
		slog.Warn("blob_delete_failed", "document_id", id, "error", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	if err := s.search.Remove(ctx, id); err != nil {
		slog.Warn("index_remove_failed", "document_id", id, "error", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Actor:      actor,
		Action:     domain.AuditActionDelete,
		DocumentID: id,
		Details:    map[string]any{"filename": rec.Filename},
		Severity:   domain.AuditSeverityInfo,
	})
	return nil
}

func (s *DocumentService) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	records, err := s.repo.ListAll(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load records for stats: %w", err)
	}

	stats := &domain.CollectionStats{
		TotalDocuments: len(records),
		ByExtension:    make(map[string]int),
	}
	for _, rec := range records {
		if rec.Public {
			stats.PublicDocuments++
		} else {
			stats.PrivateDocuments++
		}
		stats.ByExtension[rec.FileExtension]++
	}
	return stats, nil
}
