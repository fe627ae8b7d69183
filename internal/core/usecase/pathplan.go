package usecase

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// PlanPath decides where a blob lives in object storage. Classified uploads
// land under their track hierarchy, everything else under a dated general
// prefix. Planning never fails: any internal problem falls back to a
// deterministic dated path so the upload proceeds.
func PlanPath(rec *domain.MetadataRecord, filename string) (planned string) {
	when := rec.UploadedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}
	safe := safeFilename(filename)

	defer func() {
		if r := recover(); r != nil {
			planned = fallbackPath(when, safe)
		}
	}()

	switch rec.Apartado {
	case domain.TrackPES:
		return path.Join(
			"documents",
			domain.TrackPES,
			domain.StrategyFolder(rec.EstrategiaRelacionada),
			docTypeFolder(rec.TipoDocumento),
			fmt.Sprintf("%04d", yearOf(rec, when)),
			safe,
		)
	case domain.TrackCDES:
		return path.Join(
			"documents",
			domain.TrackCDES,
			normalizeSegment(rec.PuestoResponsable),
			docTypeFolder(rec.TipoDocumento),
			fmt.Sprintf("%04d", yearOf(rec, when)),
			safe,
		)
	default:
		return path.Join(
			"documents",
			"general",
			datedSegments(when),
			safe,
		)
	}
}

func fallbackPath(when time.Time, safe string) string {
	return path.Join("documents", "fallback", datedSegments(when), safe)
}

func datedSegments(when time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d", when.Year(), when.Month(), when.Day())
}

// yearOf prefers the extracted document date when it carries a usable year.
func yearOf(rec *domain.MetadataRecord, fallback time.Time) int {
	if t, err := time.Parse("2006-01-02", rec.Date); err == nil {
		return t.Year()
	}
	return fallback.Year()
}

func docTypeFolder(tipoDocumento string) string {
	if strings.TrimSpace(tipoDocumento) == "" {
		return "sin_clasificar"
	}
	return normalizeSegment(tipoDocumento)
}

// normalizeSegment applies the locale-specific folder substitutions: spaces
// become underscores and ampersands become "y".
func normalizeSegment(segment string) string {
	segment = strings.TrimSpace(strings.ToLower(segment))
	segment = strings.ReplaceAll(segment, "&", "y")
	segment = strings.ReplaceAll(segment, " ", "_")
	if segment == "" {
		return "sin_clasificar"
	}
	return segment
}

func safeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, "&", "y")
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" || base == "." {
		return "documento.bin"
	}
	return base
}
