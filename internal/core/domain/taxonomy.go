package domain

// Classification tracks. A track changes which taxonomy slice and which extra
// fields the prompt and the resulting record carry.
const (
	TrackPES  = "PES"
	TrackCDES = "CDES"
)

// StrategyOfficeUnit owns the PES taxonomy slice.
const StrategyOfficeUnit = "Oficina de Planeación Estratégica"

// DefaultOrgUnit is used when a CDES upload names an unknown unit.
const DefaultOrgUnit = "Dirección General"

// NoStrategy is the sentinel for documents that match none of the four
// strategic themes.
const NoStrategy = "Sin estrategia específica"

// DocTypeSpec describes one document type inside an organizational unit:
// which metadata fields the model must extract and what the type means.
type DocTypeSpec struct {
	Metadata    []string
	Descripcion string
}

// Estrategias is the fixed strategic-theme catalogue used by the PES track.
var Estrategias = map[string]string{
	"Estrategia I":   "Desarrollo económico, competitividad e impulso a la inversión.",
	"Estrategia II":  "Desarrollo social, inclusión y combate a la desigualdad.",
	"Estrategia III": "Desarrollo urbano sustentable, movilidad y medio ambiente.",
	"Estrategia IV":  "Gobernanza, participación ciudadana y fortalecimiento institucional.",
}

// strategyFolders maps each strategy label to its storage folder.
var strategyFolders = map[string]string{
	"Estrategia I":   "estrategia_i",
	"Estrategia II":  "estrategia_ii",
	"Estrategia III": "estrategia_iii",
	"Estrategia IV":  "estrategia_iv",
}

const noStrategyFolder = "sin_estrategia"

// Taxonomy maps organizational unit -> document type -> required metadata
// fields and description. It is loaded once and never mutated at runtime.
var Taxonomy = map[string]map[string]DocTypeSpec{
	StrategyOfficeUnit: {
		"Plan Estratégico": {
			Metadata:    []string{"periodo", "ejes_estrategicos", "responsable"},
			Descripcion: "Documento rector que define objetivos, ejes y líneas de acción de largo plazo.",
		},
		"Informe de Avance": {
			Metadata:    []string{"periodo", "indicadores", "porcentaje_avance"},
			Descripcion: "Reporte periódico de avance sobre los indicadores del plan estratégico.",
		},
		"Minuta de Sesión": {
			Metadata:    []string{"fecha_sesion", "participantes", "acuerdos"},
			Descripcion: "Registro de acuerdos y participantes de una sesión del consejo.",
		},
		"Estudio Técnico": {
			Metadata:    []string{"tema", "autor", "alcance"},
			Descripcion: "Análisis técnico o diagnóstico que sustenta decisiones del plan.",
		},
	},
	DefaultOrgUnit: {
		"Oficio": {
			Metadata:    []string{"numero_oficio", "destinatario", "asunto"},
			Descripcion: "Comunicación oficial dirigida a una dependencia o persona.",
		},
		"Convocatoria": {
			Metadata:    []string{"evento", "fecha_evento", "lugar"},
			Descripcion: "Invitación formal a sesiones, eventos o procesos de participación.",
		},
		"Acta": {
			Metadata:    []string{"fecha_sesion", "participantes", "acuerdos"},
			Descripcion: "Acta formal de sesión con acuerdos y firmas.",
		},
	},
	"Dirección de Vinculación": {
		"Convenio": {
			Metadata:    []string{"partes", "objeto", "vigencia"},
			Descripcion: "Convenio de colaboración con instituciones públicas o privadas.",
		},
		"Boletín": {
			Metadata:    []string{"titulo_boletin", "fecha_publicacion"},
			Descripcion: "Comunicado o boletín informativo para difusión externa.",
		},
	},
	"Dirección de Proyectos": {
		"Ficha de Proyecto": {
			Metadata:    []string{"nombre_proyecto", "monto_estimado", "etapa"},
			Descripcion: "Ficha técnica con alcance, monto y etapa de un proyecto.",
		},
		"Reporte de Seguimiento": {
			Metadata:    []string{"nombre_proyecto", "periodo", "avance"},
			Descripcion: "Seguimiento periódico del estado de un proyecto registrado.",
		},
	},
}

// ResolveOrgUnit returns the taxonomy key for a requested unit, falling back
// to the default unit when the name is unknown.
func ResolveOrgUnit(orgUnit string) string {
	if _, ok := Taxonomy[orgUnit]; ok {
		return orgUnit
	}
	return DefaultOrgUnit
}

// StrategyFolder maps an extracted strategy label to its storage folder.
// Unrecognized labels land in the no-strategy folder.
func StrategyFolder(estrategia string) string {
	if folder, ok := strategyFolders[estrategia]; ok {
		return folder
	}
	return noStrategyFolder
}

// IsKnownStrategy reports whether the label is one of the four catalogue
// entries or the no-strategy sentinel.
func IsKnownStrategy(estrategia string) bool {
	if estrategia == NoStrategy {
		return true
	}
	_, ok := Estrategias[estrategia]
	return ok
}

// DocTypesFor returns the taxonomy slice for a unit, resolving unknown units
// to the default one.
func DocTypesFor(orgUnit string) map[string]DocTypeSpec {
	return Taxonomy[ResolveOrgUnit(orgUnit)]
}
