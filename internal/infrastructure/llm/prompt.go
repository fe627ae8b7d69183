package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

// BuildPrompt composes the instruction text sent to the model. The baseline
// block always describes the four universal fields; a classification track
// appends its taxonomy slice and the extra fields to emit. The closing
// JSON-only directive is what the response parser counts on as the common
// case, so it is always present.
func BuildPrompt(track, orgUnit string, limits Limits) string {
	limits = limits.normalize()

	var b strings.Builder
	b.WriteString("Eres un asistente experto en análisis y extracción de metadatos de documentos profesionales.\n\n")
	b.WriteString("TAREA: Analiza el documento y extrae los metadatos en formato JSON estricto.\n\n")
	b.WriteString("INSTRUCCIONES:\n")
	b.WriteString("1. \"title\": Extrae el título principal o tema central.\n")
	fmt.Fprintf(&b, "2. \"summary\": Resumen conciso de máximo %d palabras.\n", limits.MaxSummaryWords)
	fmt.Fprintf(&b, "3. \"keywords\": Entre 5 y %d palabras clave relevantes.\n", limits.MaxKeywords)
	fmt.Fprintf(&b, "4. \"date\": Fecha más significativa en formato YYYY-MM-DD o %q.\n", DateNotFound)

	switch track {
	case domain.TrackPES:
		writePESSection(&b)
	case domain.TrackCDES:
		writeCDESSection(&b, orgUnit)
	default:
		b.WriteString("\nANÁLISIS GENERAL: No apliques ninguna clasificación institucional; limita la extracción a los cuatro campos anteriores.\n")
	}

	b.WriteString("\nFORMATO DE SALIDA:\n")
	b.WriteString("- Responde ÚNICAMENTE con el objeto JSON\n")
	b.WriteString("- NO incluyas bloques de código markdown\n")
	b.WriteString("- NO añadas texto explicativo\n")
	return b.String()
}

func writePESSection(b *strings.Builder) {
	b.WriteString("\nCATÁLOGO DE ESTRATEGIAS:\n")
	for _, name := range sortedKeys(domain.Estrategias) {
		fmt.Fprintf(b, "- %s: %s\n", name, domain.Estrategias[name])
	}

	b.WriteString("\nTIPOS DE DOCUMENTO (")
	b.WriteString(domain.StrategyOfficeUnit)
	b.WriteString("):\n")
	writeDocTypes(b, domain.Taxonomy[domain.StrategyOfficeUnit])

	b.WriteString("\nCLASIFICACIÓN ADICIONAL:\n")
	fmt.Fprintf(b, "5. \"estrategia_relacionada\": La estrategia del catálogo que mejor corresponde al documento, o %q si ninguna aplica.\n", domain.NoStrategy)
	b.WriteString("6. \"tipo_documento\": Uno de los tipos de documento listados arriba.\n")
	b.WriteString("7. \"metadatos_especificos\": Objeto JSON con los campos requeridos por el tipo de documento elegido.\n")
	fmt.Fprintf(b, "8. \"apartado\": Usa exactamente %q.\n", domain.TrackPES)
}

func writeCDESSection(b *strings.Builder, orgUnit string) {
	unit := domain.ResolveOrgUnit(orgUnit)

	b.WriteString("\nTIPOS DE DOCUMENTO (")
	b.WriteString(unit)
	b.WriteString("):\n")
	writeDocTypes(b, domain.Taxonomy[unit])

	b.WriteString("\nCLASIFICACIÓN ADICIONAL:\n")
	b.WriteString("5. \"tipo_documento\": Uno de los tipos de documento listados arriba.\n")
	fmt.Fprintf(b, "6. \"puesto_responsable\": Usa exactamente %q.\n", unit)
	b.WriteString("7. \"metadatos_especificos\": Objeto JSON con los campos requeridos por el tipo de documento elegido.\n")
	fmt.Fprintf(b, "8. \"apartado\": Usa exactamente %q.\n", domain.TrackCDES)
}

func writeDocTypes(b *strings.Builder, types map[string]domain.DocTypeSpec) {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := types[name]
		fmt.Fprintf(b, "- %s: %s Campos: %s.\n", name, spec.Descripcion, strings.Join(spec.Metadata, ", "))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
