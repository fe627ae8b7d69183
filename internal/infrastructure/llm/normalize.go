package llm

import (
	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// NormalizeFields applies call-site defaults to parsed provider output so the
// four baseline keys are never absent, and carries over the track-specific
// keys only when a track was supplied.
func NormalizeFields(parsed map[string]any, track, orgUnit string) RawMetadata {
	out := RawMetadata{
		"title":    StringField(parsed, "title", TitleNotFound),
		"summary":  StringField(parsed, "summary", SummaryNotAvailable),
		"keywords": KeywordsField(parsed),
		"date":     StringField(parsed, "date", DateNotFound),
	}

	switch track {
	case domain.TrackPES:
		estrategia := StringField(parsed, "estrategia_relacionada", domain.NoStrategy)
		if !domain.IsKnownStrategy(estrategia) {
			estrategia = domain.NoStrategy
		}
		out["estrategia_relacionada"] = estrategia
		out["tipo_documento"] = StringField(parsed, "tipo_documento", "")
		if specifics := MapField(parsed, "metadatos_especificos"); specifics != nil {
			out["metadatos_especificos"] = specifics
		}
		out["apartado"] = domain.TrackPES

	case domain.TrackCDES:
		unit := domain.ResolveOrgUnit(orgUnit)
		out["tipo_documento"] = StringField(parsed, "tipo_documento", "")
		out["puesto_responsable"] = StringField(parsed, "puesto_responsable", unit)
		if specifics := MapField(parsed, "metadatos_especificos"); specifics != nil {
			out["metadatos_especificos"] = specifics
		}
		out["apartado"] = domain.TrackCDES
	}

	return out
}
