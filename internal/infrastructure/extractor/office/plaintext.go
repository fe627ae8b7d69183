package office

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText decodes arbitrary bytes as text, trying encodings in a fixed
// priority order: utf-8, then windows-1252, then latin-1. The single-byte
// decoders accept any input, so the last step only fails on empty content.
func decodeText(content []byte) (string, bool) {
	if len(content) == 0 {
		return "", false
	}

	if utf8.Valid(content) {
		return strings.TrimSpace(string(content)), true
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().Bytes(content)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(decoded)); text != "" {
			return text, true
		}
	}
	return "", false
}
