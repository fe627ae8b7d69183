package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hmoralesr/document-intake/internal/core/domain"
)

type recordPredicate func(*domain.MetadataRecord) bool

// parseFilterExpression understands the subset of filter syntax the gateway
// itself emits: `field = value` clauses joined by AND. Clauses it cannot
// interpret are dropped rather than failing the whole query.
func parseFilterExpression(expr string) []recordPredicate {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	var predicates []recordPredicate
	for _, clause := range strings.Split(expr, " AND ") {
		field, value, ok := splitClause(clause)
		if !ok {
			continue
		}
		switch field {
		case "public", "publico":
			want := value == "true"
			predicates = append(predicates, func(rec *domain.MetadataRecord) bool {
				return rec.Public == want
			})
		case "apartado":
			want := value
			predicates = append(predicates, func(rec *domain.MetadataRecord) bool {
				return rec.Apartado == want
			})
		case "file_extension":
			want := strings.ToLower(value)
			predicates = append(predicates, func(rec *domain.MetadataRecord) bool {
				return strings.HasSuffix(strings.ToLower(rec.FileExtension), want)
			})
		}
	}
	return predicates
}

func splitClause(clause string) (field, value string, ok bool) {
	parts := strings.SplitN(clause, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	field = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = unquoted
	}
	if field == "" {
		return "", "", false
	}
	return field, value, true
}

func matchesPredicates(rec *domain.MetadataRecord, predicates []recordPredicate) bool {
	for _, p := range predicates {
		if !p(rec) {
			return false
		}
	}
	return true
}

// sortRecords applies a chain of `field:asc|desc` keys; earlier keys win.
// Unknown fields are ignored, leaving the incoming order intact for them.
func sortRecords(records []domain.MetadataRecord, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			field, desc := parseSortKey(key)
			cmp := compareField(&records[i], &records[j], field)
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func parseSortKey(key string) (field string, desc bool) {
	field = key
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		field = key[:idx]
		desc = strings.EqualFold(key[idx+1:], "desc")
	}
	return strings.TrimSpace(field), desc
}

func compareField(a, b *domain.MetadataRecord, field string) int {
	switch field {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "filename":
		return strings.Compare(strings.ToLower(a.Filename), strings.ToLower(b.Filename))
	case "date":
		return strings.Compare(a.Date, b.Date)
	case "file_size_bytes":
		return compareInt64(a.FileSizeBytes, b.FileSizeBytes)
	case "version":
		return compareInt64(int64(a.Version), int64(b.Version))
	case "uploaded_at":
		switch {
		case a.UploadedAt.Before(b.UploadedAt):
			return -1
		case a.UploadedAt.After(b.UploadedAt):
			return 1
		}
		return 0
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
