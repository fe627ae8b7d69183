package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

type repoFake struct {
	records     map[string]*domain.MetadataRecord
	createErr   error
	listErr     error
	appendCalls [][2]string
}

func newRepoFake() *repoFake {
	return &repoFake{records: map[string]*domain.MetadataRecord{}}
}

func (f *repoFake) Create(_ context.Context, rec *domain.MetadataRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyRec := *rec
	f.records[rec.ID] = &copyRec
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.MetadataRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get by id", errors.New(id))
	}
	copyRec := *rec
	return &copyRec, nil
}

func (f *repoFake) GetByHash(_ context.Context, hash string) (*domain.MetadataRecord, error) {
	for _, rec := range f.records {
		if rec.FileHash == hash {
			copyRec := *rec
			return &copyRec, nil
		}
	}
	return nil, nil
}

func (f *repoFake) ListAll(_ context.Context, publicOnly bool) ([]domain.MetadataRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.MetadataRecord
	for _, rec := range f.records {
		if publicOnly && !rec.Public {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (f *repoFake) AppendVersion(_ context.Context, parentID, childID string) error {
	parent, ok := f.records[parentID]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "append version", errors.New(parentID))
	}
	for _, existing := range parent.Versions {
		if existing == childID {
			return nil
		}
	}
	parent.Versions = append(parent.Versions, childID)
	f.appendCalls = append(f.appendCalls, [2]string{parentID, childID})
	return nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete", errors.New(id))
	}
	delete(f.records, id)
	return nil
}

type storageFake struct {
	saved   map[string][]byte
	saveErr error
	openErr error
	deleted []string
}

func newStorageFake() *storageFake {
	return &storageFake{saved: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("blob missing: " + key)
	}
	return io.NopCloser(strings.NewReader(string(raw))), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return nil
}

type searchFake struct {
	healthy   bool
	indexOK   bool
	indexed   []domain.MetadataRecord
	result    *domain.SearchResult
	searchErr error
	removed   []string
}

func (f *searchFake) Healthy(context.Context) bool { return f.healthy }

func (f *searchFake) Index(_ context.Context, docs []domain.MetadataRecord) bool {
	f.indexed = append(f.indexed, docs...)
	return f.indexOK
}

func (f *searchFake) Search(context.Context, domain.SearchQuery) (*domain.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.result, nil
}

func (f *searchFake) Remove(_ context.Context, documentID string) error {
	f.removed = append(f.removed, documentID)
	return nil
}

type auditFake struct {
	events []domain.AuditEvent
}

func (f *auditFake) Record(_ context.Context, event domain.AuditEvent) {
	f.events = append(f.events, event)
}

type extractorFake struct {
	track   string
	orgUnit string
}

func (f *extractorFake) ExtractMetadata(_ context.Context, content []byte, filename, track, orgUnit string) domain.MetadataRecord {
	f.track = track
	f.orgUnit = orgUnit
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	sum := sha256.Sum256(content)
	return domain.MetadataRecord{
		ID:            stem,
		Filename:      filename,
		FileExtension: ext,
		FileSizeBytes: int64(len(content)),
		FileHash:      hex.EncodeToString(sum[:]),
		Title:         "Documento " + stem,
		Summary:       "Resumen de " + stem,
		Keywords:      []string{"prueba"},
		Date:          "2024-03-15",
		Apartado:      track,
		Track:         track,
		Version:       1,
		Versions:      []string{},
		UploadedAt:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		ProcessedBy:   "fake-model",
	}
}
