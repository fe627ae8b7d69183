package llm

import "testing"

func TestParseReplyPlainObject(t *testing.T) {
	data := ParseReply(`{"title": "Plan Anual", "summary": "Resumen", "keywords": ["a"], "date": "2024-01-15"}`)
	if data["title"] != "Plan Anual" {
		t.Fatalf("expected title, got %v", data["title"])
	}
}

func TestParseReplyFencedBlock(t *testing.T) {
	raw := "Claro, aquí está el resultado:\n```json\n{\"title\": \"Acta\", \"date\": \"2024-02-01\"}\n```\nEspero que sea útil."
	data := ParseReply(raw)
	if data["title"] != "Acta" {
		t.Fatalf("expected fenced title, got %v", data["title"])
	}
}

func TestParseReplyUntaggedFence(t *testing.T) {
	raw := "```\n{\"title\": \"Informe\"}\n```"
	data := ParseReply(raw)
	if data["title"] != "Informe" {
		t.Fatalf("expected title from untagged fence, got %v", data["title"])
	}
}

func TestParseReplyBraceExtraction(t *testing.T) {
	raw := `El análisis arrojó lo siguiente {"title": "Convenio", "keywords": []} y nada más.`
	data := ParseReply(raw)
	if data["title"] != "Convenio" {
		t.Fatalf("expected extracted title, got %v", data["title"])
	}
}

func TestParseReplyGarbageFallsBack(t *testing.T) {
	data := ParseReply("lo siento, no puedo procesar este documento")
	if data["title"] != ParseErrorTitle {
		t.Fatalf("expected parse-error title, got %v", data["title"])
	}
	if data["summary"] != ParseErrorSummary {
		t.Fatalf("expected parse-error summary, got %v", data["summary"])
	}
	if data["date"] != DateNotFound {
		t.Fatalf("expected date sentinel, got %v", data["date"])
	}
}

func TestParseReplyJSONArrayFallsBack(t *testing.T) {
	data := ParseReply(`["no", "es", "un", "objeto"]`)
	if data["title"] != ParseErrorTitle {
		t.Fatalf("expected fallback for array reply, got %v", data["title"])
	}
}
