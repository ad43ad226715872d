package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alhaneef/text-weaver-pro/internal/adapters/db/sqlite"
	aiextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/ai"
	csvextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/csv"
	mdextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/markdown"
	extractreg "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/registry"
	textextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/text"
	csvexport "github.com/alhaneef/text-weaver-pro/internal/adapters/export/csv"
	exportreg "github.com/alhaneef/text-weaver-pro/internal/adapters/export/registry"
	textexport "github.com/alhaneef/text-weaver-pro/internal/adapters/export/text"
	"github.com/alhaneef/text-weaver-pro/internal/adapters/llm/factory"
	"github.com/alhaneef/text-weaver-pro/internal/adapters/prompt"
	"github.com/alhaneef/text-weaver-pro/internal/api/app"
	"github.com/alhaneef/text-weaver-pro/internal/api/httpapi"
	"github.com/alhaneef/text-weaver-pro/internal/config"
	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/batch"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/executor"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/exporter"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/feed"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/importer"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/orchestrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := cfg.Logger()
	slog.SetDefault(log)

	db, err := sqlite.Init(cfg.DBPath)
	if err != nil {
		log.Error("init database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	projects := sqlite.NewProjectRepo(db)
	chunks := sqlite.NewChunkRepo(db)
	providers := sqlite.NewProviderRepo(db)
	templates := sqlite.NewTemplateRepo(db)
	cache := sqlite.NewCacheRepo(db)
	settings := sqlite.NewSettingsRepo(db)

	renderer := prompt.New(templates)
	buildCapability := func(p *domain.Provider) (ports.Capability, error) {
		backend, ok := factory.FromProvider(p)
		if !ok {
			return nil, &ports.CapabilityError{Message: "unsupported provider type " + p.Type}
		}
		return backend, nil
	}

	extractors := extractreg.New()
	extractors.Register(textextract.New())
	extractors.Register(mdextract.New())
	extractors.Register(csvextract.New())
	extractors.SetFallback(textextract.New())

	exporters := exportreg.New()
	exporters.Register(textexport.New())
	exporters.Register(csvexport.New())

	exec := executor.New(executor.Deps{
		Providers:       providers,
		Cache:           cache,
		Prompt:          renderer,
		BuildCapability: buildCapability,
		Log:             log,
	}, executor.Config{
		Timeout:     cfg.TranslateTimeout,
		MaxAttempts: cfg.MaxAttempts,
	})

	progressFeed := feed.New()
	orch := orchestrator.New(ctx, orchestrator.Deps{
		Projects: projects,
		Chunks:   chunks,
		Exec:     exec,
		Publish:  progressFeed,
		Log:      log,
	}, orchestrator.Config{WorkerPoolSize: cfg.WorkerPoolSize})

	coord := batch.New(batch.Deps{
		Projects: projects,
		Control:  orch,
		Feed:     progressFeed,
		Log:      log,
	}, batch.Config{Concurrency: cfg.BatchConcurrency})

	imp := importer.New(importer.Deps{
		Projects:        projects,
		Chunks:          chunks,
		Providers:       providers,
		Settings:        settings,
		Extract:         extractors,
		Refine:          aiextract.New(renderer),
		BuildCapability: buildCapability,
		Log:             log,
	}, importer.Config{
		ChunkTokenBudget: cfg.ChunkTokenBudget,
		ChunkSlack:       cfg.ChunkSlack,
	})

	exp := exporter.New(exporter.Deps{
		Projects: projects,
		Chunks:   chunks,
		Formats:  exporters,
	})

	providerAPI := app.NewProviderAPI(providers, settings)
	server := httpapi.New(httpapi.Deps{
		Projects:      app.NewProjectAPI(projects, chunks, imp),
		Orchestration: app.NewOrchestrationAPI(orch, projects, chunks, progressFeed, providerAPI),
		Batch:         app.NewBatchAPI(coord, providerAPI),
		Providers:     providerAPI,
		Export:        app.NewExportAPI(exp),
		Settings:      app.NewSettingsAPI(settings, templates),
		Log:           log,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown", "err", err)
		}
	}()

	log.Info("listening", "addr", cfg.ServerAddr)
	if err := server.Listen(cfg.ServerAddr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
