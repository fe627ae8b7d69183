package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmoralesr/document-intake/internal/core/domain"
	"github.com/hmoralesr/document-intake/internal/core/ports"
	"github.com/hmoralesr/document-intake/internal/observability/metrics"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchUseCase answers queries through the remote engine when it is
// healthy, and through a linear scan of the repository otherwise. Callers
// always get an answer; only repository trouble surfaces as an error.
type SearchUseCase struct {
	engine  ports.SearchEngine
	repo    ports.DocumentRepository
	audit   ports.AuditLog
	metrics *metrics.Pipeline
}

func NewSearchUseCase(
	engine ports.SearchEngine,
	repo ports.DocumentRepository,
	audit ports.AuditLog,
	pipelineMetrics *metrics.Pipeline,
) *SearchUseCase {
	return &SearchUseCase{
		engine:  engine,
		repo:    repo,
		audit:   audit,
		metrics: pipelineMetrics,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, req ports.SearchRequest) (*domain.SearchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	q := domain.SearchQuery{
		Query:  req.Query,
		Filter: buildFilterExpression(req),
		Sort:   req.Sort,
		Limit:  limit,
		Offset: offset,
	}

	if uc.engine.Healthy(ctx) {
		result, err := uc.engine.Search(ctx, q)
		if err == nil {
			result.Source = domain.SourceSearchEngine
			result.Limit = limit
			result.Offset = offset
			uc.finish(ctx, req, result)
			return result, nil
		}
		slog.Warn("remote_search_failed", "error", err, "query", req.Query)
	}

	result, err := uc.localSearch(ctx, q)
	if err != nil {
		return nil, err
	}
	uc.finish(ctx, req, result)
	return result, nil
}

func (uc *SearchUseCase) finish(ctx context.Context, req ports.SearchRequest, result *domain.SearchResult) {
	uc.metrics.RecordSearch(result.Source)
	uc.audit.Record(ctx, domain.AuditEvent{
		Action:   domain.AuditActionSearch,
		Details:  map[string]any{"query": req.Query, "source": result.Source, "hits": len(result.Hits)},
		Severity: domain.AuditSeverityInfo,
	})
}

// localSearch is the degraded path: every record is loaded and filtered in
// process.
func (uc *SearchUseCase) localSearch(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	records, err := uc.repo.ListAll(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load records for local search: %w", err)
	}

	predicates := parseFilterExpression(q.Filter)
	matched := make([]domain.MetadataRecord, 0, len(records))
	for _, rec := range records {
		if !matchesPredicates(&rec, predicates) {
			continue
		}
		if q.Query != "" && !matchesQuery(&rec, q.Query) {
			continue
		}
		matched = append(matched, rec)
	}

	sortRecords(matched, q.Sort)

	total := len(matched)
	start := q.Offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Hits:               matched[start:end],
		EstimatedTotalHits: total,
		Limit:              q.Limit,
		Offset:             q.Offset,
		Source:             domain.SourceLocalFallback,
	}, nil
}

func buildFilterExpression(req ports.SearchRequest) string {
	var parts []string
	if req.PublicOnly {
		parts = append(parts, "public = true")
	}
	if req.Apartado != "" {
		parts = append(parts, fmt.Sprintf("apartado = %q", req.Apartado))
	}
	if req.Extension != "" {
		parts = append(parts, fmt.Sprintf("file_extension = %q", req.Extension))
	}
	return strings.Join(parts, " AND ")
}

func matchesQuery(rec *domain.MetadataRecord, query string) bool {
	needle := strings.ToLower(query)
	if strings.Contains(strings.ToLower(rec.Title), needle) ||
		strings.Contains(strings.ToLower(rec.Summary), needle) ||
		strings.Contains(strings.ToLower(rec.Filename), needle) {
		return true
	}
	for _, kw := range rec.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}
