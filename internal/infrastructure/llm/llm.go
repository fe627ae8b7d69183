// Package llm holds the provider-neutral pieces of the metadata extraction
// pipeline: prompt construction, tolerant response parsing and the provider
// contract every vendor adapter satisfies.
package llm

import (
	"context"
	"strings"
	"time"
)

// Spanish sentinel values, kept byte-for-byte stable because stored records
// and the search index rely on them.
const (
	TitleNotFound       = "Título no encontrado"
	SummaryNotAvailable = "Resumen no disponible"
	DateNotFound        = "Fecha no encontrada"
	ParseErrorTitle     = "Error de parseo"
	ParseErrorSummary   = "No se pudo extraer el resumen."
)

// LargePayloadBytes is the threshold above which multimodal providers switch
// to the upload-then-reference flow.
const LargePayloadBytes = 20 << 20

// Limits bound what we send to and accept from a provider.
type Limits struct {
	MaxTextLength   int
	MaxSummaryWords int
	MaxKeywords     int
	Timeout         time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxTextLength:   8000,
		MaxSummaryWords: 150,
		MaxKeywords:     10,
		Timeout:         120 * time.Second,
	}
}

func (l Limits) normalize() Limits {
	def := DefaultLimits()
	if l.MaxTextLength <= 0 {
		l.MaxTextLength = def.MaxTextLength
	}
	if l.MaxSummaryWords <= 0 {
		l.MaxSummaryWords = def.MaxSummaryWords
	}
	if l.MaxKeywords <= 0 {
		l.MaxKeywords = def.MaxKeywords
	}
	if l.Timeout <= 0 {
		l.Timeout = def.Timeout
	}
	return l
}

// RawMetadata is the provider output before it is assembled into a
// MetadataRecord: the four universal fields plus any track-specific keys.
type RawMetadata map[string]any

// Provider is one vendor adapter. Process never returns an error: call-level
// failures are converted into a placeholder result so the upload flow can
// continue to a defined state.
type Provider interface {
	Name() string
	Model() string
	Process(ctx context.Context, content []byte, filename, track, orgUnit string) RawMetadata
}

// ProcessingErrorResult is the placeholder a provider emits when the vendor
// call failed outright.
func ProcessingErrorResult(provider string, err error) RawMetadata {
	return RawMetadata{
		"title":    "Error de procesamiento con " + provider,
		"summary":  "Error: " + err.Error(),
		"keywords": []string{},
		"date":     DateNotFound,
		"error":    err.Error(),
	}
}

// TruncateText caps text at max runes without splitting a multibyte rune.
func TruncateText(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// StringField reads a string value out of parsed provider output, falling
// back when the key is missing or not a string.
func StringField(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

// KeywordsField coerces the keywords value into a string slice; anything
// else collapses to empty.
func KeywordsField(m map[string]any) []string {
	switch v := m["keywords"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return []string{}
	}
}

// MapField reads a nested object, tolerating absence.
func MapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}
