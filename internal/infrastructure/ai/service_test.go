package ai

import (
	"context"
	"testing"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
)

type providerFake struct {
	raw    llm.RawMetadata
	panics bool
}

func (f *providerFake) Name() string  { return "Fake" }
func (f *providerFake) Model() string { return "fake-model" }

func (f *providerFake) Process(context.Context, []byte, string, string, string) llm.RawMetadata {
	if f.panics {
		panic("provider exploded")
	}
	return f.raw
}

func TestExtractMetadataBaseline(t *testing.T) {
	svc := NewExtractionService(&providerFake{raw: llm.RawMetadata{
		"title":    "Plan Anual",
		"summary":  "Resumen del plan",
		"keywords": []string{"plan", "anual"},
		"date":     "2024-01-15",
	}}, nil)

	rec := svc.ExtractMetadata(context.Background(), []byte("contenido"), "plan anual.pdf", "", "")

	if rec.ID != "plan anual" {
		t.Fatalf("expected stem id, got %s", rec.ID)
	}
	if rec.Title != "Plan Anual" || rec.Date != "2024-01-15" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.FileExtension != ".pdf" || rec.FileSizeBytes != int64(len("contenido")) {
		t.Fatalf("unexpected file fields %+v", rec)
	}
	if rec.Version != 1 || rec.ProcessedBy != "fake-model" {
		t.Fatalf("unexpected bookkeeping %+v", rec)
	}
	if rec.Apartado != "" || rec.Track != "" {
		t.Fatalf("trackless record must not carry track fields")
	}
}

func TestExtractMetadataPESRoundTrip(t *testing.T) {
	svc := NewExtractionService(&providerFake{raw: llm.RawMetadata{
		"title":                  "Plan Estratégico",
		"estrategia_relacionada": "Estrategia I",
		"tipo_documento":         "Plan Estratégico",
		"metadatos_especificos":  map[string]any{"periodo": "2024-2030"},
		"apartado":               domain.TrackPES,
	}}, nil)

	rec := svc.ExtractMetadata(context.Background(), []byte("x"), "plan.pdf", domain.TrackPES, "")

	if rec.Apartado != domain.TrackPES || rec.Track != domain.TrackPES {
		t.Fatalf("expected PES classification, got %+v", rec)
	}
	if rec.EstrategiaRelacionada != "Estrategia I" {
		t.Fatalf("unexpected strategy %s", rec.EstrategiaRelacionada)
	}
	if rec.MetadatosEspecificos["periodo"] != "2024-2030" {
		t.Fatalf("unexpected specifics %v", rec.MetadatosEspecificos)
	}
	if rec.PuestoResponsable != "" {
		t.Fatalf("PES record must not carry puesto_responsable")
	}
}

func TestExtractMetadataCDESDefaults(t *testing.T) {
	svc := NewExtractionService(&providerFake{raw: llm.RawMetadata{
		"title": "Oficio 123",
	}}, nil)

	rec := svc.ExtractMetadata(context.Background(), []byte("x"), "oficio.pdf", domain.TrackCDES, "Oficina Inexistente")

	if rec.OrgUnit != domain.DefaultOrgUnit {
		t.Fatalf("expected resolved unit, got %s", rec.OrgUnit)
	}
	if rec.PuestoResponsable != domain.DefaultOrgUnit {
		t.Fatalf("expected default responsable, got %s", rec.PuestoResponsable)
	}
	if rec.Apartado != domain.TrackCDES {
		t.Fatalf("expected apartado CDES, got %s", rec.Apartado)
	}
}

func TestExtractMetadataProviderErrorKey(t *testing.T) {
	svc := NewExtractionService(&providerFake{
		raw: llm.ProcessingErrorResult("Fake", context.DeadlineExceeded),
	}, nil)

	rec := svc.ExtractMetadata(context.Background(), []byte("x"), "plan.pdf", "", "")

	if rec.Error == "" {
		t.Fatalf("expected error carried onto record")
	}
	if rec.Title != "Error de procesamiento con Fake" {
		t.Fatalf("unexpected title %s", rec.Title)
	}
}

func TestExtractMetadataSurvivesPanic(t *testing.T) {
	svc := NewExtractionService(&providerFake{panics: true}, nil)

	rec := svc.ExtractMetadata(context.Background(), []byte("x"), "plan.pdf", "", "")

	if rec.ID != "plan" {
		t.Fatalf("expected record despite panic, got %+v", rec)
	}
	if rec.Title != "Error procesando plan.pdf" {
		t.Fatalf("unexpected title %s", rec.Title)
	}
	if rec.Summary != "No se pudieron extraer metadatos." {
		t.Fatalf("unexpected summary %s", rec.Summary)
	}
	if rec.Error == "" {
		t.Fatalf("expected panic text on record")
	}
}
