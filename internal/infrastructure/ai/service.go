package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/observability/metrics"
)

// ExtractionService orchestrates provider call, parsing and record assembly.
// It satisfies ports.MetadataExtractor and never returns an error: whatever
// goes wrong, the upload flow receives a record it can store.
type ExtractionService struct {
	provider llm.Provider
	metrics  *metrics.Pipeline
}

func NewExtractionService(provider llm.Provider, pipelineMetrics *metrics.Pipeline) *ExtractionService {
	return &ExtractionService{
		provider: provider,
		metrics:  pipelineMetrics,
	}
}

func (s *ExtractionService) ExtractMetadata(ctx context.Context, fileContent []byte, filename, track, orgUnit string) (rec domain.MetadataRecord) {
	now := time.Now().UTC()
	hash := hashBytes(fileContent)
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("metadata_extraction_panic", "filename", filename, "panic", r)
			rec = s.errorRecord(filename, stem, ext, hash, int64(len(fileContent)), now, fmt.Sprintf("panic: %v", r))
		}
	}()

	start := time.Now()
	raw := s.provider.Process(ctx, fileContent, filename, track, orgUnit)
	s.metrics.ObserveProviderCall(s.provider.Name(), time.Since(start))

	rec = domain.MetadataRecord{
		ID:            stem,
		Filename:      filename,
		FileExtension: ext,
		FileSizeBytes: int64(len(fileContent)),
		FileHash:      hash,
		Title:         llm.StringField(raw, "title", llm.TitleNotFound),
		Summary:       llm.StringField(raw, "summary", llm.SummaryNotAvailable),
		Keywords:      llm.KeywordsField(raw),
		Date:          llm.StringField(raw, "date", llm.DateNotFound),
		Version:       1,
		Versions:      []string{},
		UploadedAt:    now,
		UpdatedAt:     now,
		ProcessedBy:   s.provider.Model(),
	}
	rec.Error = llm.StringField(raw, "error", "")

	if track != "" {
		s.applyTrackFields(&rec, raw, track, orgUnit)
	}
	return rec
}

func (s *ExtractionService) applyTrackFields(rec *domain.MetadataRecord, raw llm.RawMetadata, track, orgUnit string) {
	rec.Track = track
	rec.Apartado = llm.StringField(raw, "apartado", track)
	rec.TipoDocumento = llm.StringField(raw, "tipo_documento", "")
	rec.MetadatosEspecificos = llm.MapField(raw, "metadatos_especificos")

	switch track {
	case domain.TrackPES:
		rec.EstrategiaRelacionada = llm.StringField(raw, "estrategia_relacionada", domain.NoStrategy)
	case domain.TrackCDES:
		rec.OrgUnit = domain.ResolveOrgUnit(orgUnit)
		rec.PuestoResponsable = llm.StringField(raw, "puesto_responsable", rec.OrgUnit)
	}
}

func (s *ExtractionService) errorRecord(filename, stem, ext, hash string, size int64, now time.Time, errText string) domain.MetadataRecord {
	return domain.MetadataRecord{
		ID:            stem,
		Filename:      filename,
		FileExtension: ext,
		FileSizeBytes: size,
		FileHash:      hash,
		Title:         "Error procesando " + filename,
		Summary:       "No se pudieron extraer metadatos.",
		Keywords:      []string{},
		Date:          llm.DateNotFound,
		Version:       1,
		Versions:      []string{},
		UploadedAt:    now,
		UpdatedAt:     now,
		ProcessedBy:   s.provider.Model(),
		Error:         errText,
	}
}

func hashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
