package usecase

import (
	"testing"
	"time"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

func TestPlanPathPES(t *testing.T) {
	rec := &domain.MetadataRecord{
		Apartado:              domain.TrackPES,
		EstrategiaRelacionada: "Estrategia I",
		TipoDocumento:         "Plan Operativo",
		Date:                  "2024-03-15",
	}

	got := PlanPath(rec, "Plan Anual & Metas.pdf")
	want := "documents/PES/estrategia_i/plan_operativo/2024/Plan_Anual_y_Metas.pdf"
	if got != want {
		t.Fatalf("PlanPath() = %s, want %s", got, want)
	}
}

func TestPlanPathPESUnknownStrategy(t *testing.T) {
	rec := &domain.MetadataRecord{
		Apartado:              domain.TrackPES,
		EstrategiaRelacionada: domain.NoStrategy,
		Date:                  "2023-01-02",
	}

	got := PlanPath(rec, "acta.pdf")
	want := "documents/PES/sin_estrategia/sin_clasificar/2023/acta.pdf"
	if got != want {
		t.Fatalf("PlanPath() = %s, want %s", got, want)
	}
}

func TestPlanPathCDES(t *testing.T) {
	rec := &domain.MetadataRecord{
		Apartado:          domain.TrackCDES,
		PuestoResponsable: "Dirección General",
		TipoDocumento:     "Informe",
		Date:              "2024-07-01",
	}

	got := PlanPath(rec, "informe final.docx")
	want := "documents/CDES/dirección_general/informe/2024/informe_final.docx"
	if got != want {
		t.Fatalf("PlanPath() = %s, want %s", got, want)
	}
}

func TestPlanPathGeneralUsesUploadDate(t *testing.T) {
	rec := &domain.MetadataRecord{
		UploadedAt: time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC),
	}

	got := PlanPath(rec, "notas.txt")
	want := "documents/general/2024/02/03/notas.txt"
	if got != want {
		t.Fatalf("PlanPath() = %s, want %s", got, want)
	}
}

func TestPlanPathDeterministic(t *testing.T) {
	rec := &domain.MetadataRecord{
		Apartado:              domain.TrackPES,
		EstrategiaRelacionada: "Estrategia II",
		TipoDocumento:         "Acta",
		Date:                  "2024-05-10",
	}

	first := PlanPath(rec, "acta comité.pdf")
	second := PlanPath(rec, "acta comité.pdf")
	if first != second {
		t.Fatalf("expected deterministic plan, got %s then %s", first, second)
	}
}

func TestPlanPathYearFallsBackToUpload(t *testing.T) {
	rec := &domain.MetadataRecord{
		Apartado:   domain.TrackPES,
		Date:       "Fecha no encontrada",
		UploadedAt: time.Date(2022, 11, 20, 0, 0, 0, 0, time.UTC),
	}

	got := PlanPath(rec, "plan.pdf")
	want := "documents/PES/sin_estrategia/sin_clasificar/2022/plan.pdf"
	if got != want {
		t.Fatalf("PlanPath() = %s, want %s", got, want)
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"..\\..\\evil.pdf": "evil.pdf",
		"a b & c.txt":      "a_b_y_c.txt",
		"":                 "documento.bin",
	}
	for in, want := range cases {
		if got := safeFilename(in); got != want {
			t.Fatalf("safeFilename(%q) = %s, want %s", in, got, want)
		}
	}
}
