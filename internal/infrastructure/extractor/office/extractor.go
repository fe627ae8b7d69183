// Package office extracts plain text from the document formats the intake
// pipeline accepts. Handlers never raise: any internal failure yields an
// empty string and the caller decides what placeholder to use.
package office

import (
	"log/slog"
	"strings"
)

// BinaryPlaceholder is returned when no decoding strategy produced text.
const BinaryPlaceholder = "Contenido no extraíble - archivo binario"

type handler func(content []byte) (string, error)

var handlers = map[string]handler{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".xlsx": extractExcel,
}

// ExtractText extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Office formats that
// cannot be parsed yield "", plain or unknown formats fall back to
// best-effort decoding.
func ExtractText(content []byte, ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))

	if h, ok := handlers[ext]; ok {
		return runHandler(h, content, ext)
	}

	if text, ok := decodeText(content); ok {
		return text
	}
	return BinaryPlaceholder
}

// runHandler isolates format handlers: the PDF library is known to panic on
// malformed xref tables, so failures of any kind collapse to "".
func runHandler(h handler, content []byte, ext string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("text_extraction_panic", "extension", ext, "panic", r)
			text = ""
		}
	}()

	text, err := h(content)
	if err != nil {
		slog.Debug("text_extraction_failed", "extension", ext, "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
