package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hmoralesr/document-intake/internal/config"
	"github.com/hmoralesr/document-intake/internal/core/ports"
	"github.com/hmoralesr/document-intake/internal/core/usecase"
	"github.com/hmoralesr/document-intake/internal/infrastructure/ai"
	"github.com/hmoralesr/document-intake/internal/infrastructure/audit"
	"github.com/hmoralesr/document-intake/internal/infrastructure/auth"
	"github.com/hmoralesr/document-intake/internal/infrastructure/llm"
	"github.com/hmoralesr/document-intake/internal/infrastructure/queue/nats"
	"github.com/hmoralesr/document-intake/internal/infrastructure/repository/postgres"
	"github.com/hmoralesr/document-intake/internal/infrastructure/resilience"
	"github.com/hmoralesr/document-intake/internal/infrastructure/search/meili"
	"github.com/hmoralesr/document-intake/internal/infrastructure/storage/localfs"
	"github.com/hmoralesr/document-intake/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPServerMetrics

	UploadUC  ports.DocumentUploader
	SearchUC  ports.DocumentSearcher
	Documents *usecase.DocumentService
	Verifier  ports.TokenVerifier

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	auditRepo := postgres.NewAuditRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	search := meili.New(cfg.MeiliURL, cfg.MeiliMasterKey, cfg.MeiliIndexUID, executor)
	if err := search.EnsureIndex(ctx); err != nil {
		// The API still works through the local fallback path.
		slog.Warn("search_index_bootstrap_failed", "error", err)
	}

	var publisher ports.EventPublisher
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		// The audit trail stays on postgres only.
		slog.Warn("audit_publisher_unavailable", "error", err)
	} else {
		publisher = queue
	}
	auditLog := audit.NewRecorder(auditRepo, publisher)

	limits := llm.Limits{
		MaxTextLength:   cfg.MaxTextLength,
		MaxSummaryWords: cfg.MaxSummaryWords,
		MaxKeywords:     cfg.MaxKeywords,
		Timeout:         time.Duration(cfg.AITimeoutSeconds) * time.Second,
	}
	provider := ai.NewProvider(ai.ProviderSettings{
		Provider:    cfg.AIProvider,
		GeminiKey:   cfg.GeminiKey,
		OpenAIKey:   cfg.OpenAIKey,
		DeepSeekKey: cfg.DeepSeekKey,
	}, limits, executor)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPServerMetrics(registry, "api")
	pipelineMetrics := metrics.NewPipeline(registry)

	extractor := ai.NewExtractionService(provider, pipelineMetrics)

	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, extractor, search, auditLog, pipelineMetrics)
	searchUC := usecase.NewSearchUseCase(search, repo, auditLog, pipelineMetrics)
	documents := usecase.NewDocumentService(repo, storage, search, auditLog)

	var verifier ports.TokenVerifier
	if cfg.APIAuthToken != "" {
		verifier = auth.NewStaticVerifier(cfg.APIAuthToken, "")
	}

	return &App{
		Config: cfg,

		Registry:    registry,
		HTTPMetrics: httpMetrics,

		UploadUC:  uploadUC,
		SearchUC:  searchUC,
		Documents: documents,
		Verifier:  verifier,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
