package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"NewsDesk/internal/api"
	"NewsDesk/internal/api/handler"
	"NewsDesk/internal/config"
	"NewsDesk/internal/infrastructure/content"
	"NewsDesk/internal/infrastructure/llm"
	"NewsDesk/internal/infrastructure/scheduler"
	"NewsDesk/internal/infrastructure/source"
	"NewsDesk/internal/infrastructure/storage"
	"NewsDesk/internal/infrastructure/telegram"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/queue"
	"NewsDesk/internal/scanner"
	"NewsDesk/internal/summarizer"
	"NewsDesk/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	repo   *storage.SQLiteRepository

	Ingestor    *usecase.Ingestor
	Pipeline    *usecase.Pipeline
	Queue       *queue.Queue
	Publisher   *usecase.Publisher
	Catalogue   *usecase.Catalogue
	Maintenance *usecase.Maintenance
	Scheduler   *usecase.Scheduler

	server *http.Server
}

// New opens the store and builds every component. Close releases the store.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := storage.NewSQLiteRepository(db)

	registry := scanner.NewRegistry()
	guardian := source.NewGuardianScanner(nil, source.GuardianOptions{
		Endpoint:  cfg.Guardian.Endpoint,
		APIKey:    cfg.Guardian.APIKey,
		PageSize:  cfg.Guardian.PageSize,
		PageDelay: cfg.Guardian.PageDelay,
	}, baseLogger.With("component", "scanner.guardian"))
	registry.Register(guardian)
	articleSource := source.NewStrategySource(registry, guardian.Name(), nil, baseLogger.With("component", "source"))

	generator := llm.NewOllamaClient(llm.Options{
		Endpoint: cfg.Ollama.URL,
		Model:    cfg.Ollama.Model,
		Timeout:  cfg.Ollama.Timeout,
	})
	svc := summarizer.New(generator)

	store := content.NewMDXStore(cfg.Content.Dir, baseLogger.With("component", "content"))

	var notifier ports.Notifier
	tg := cfg.Notifications.Telegram
	if n := telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIBase); n.Enabled() {
		notifier = n
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Articles:   repo,
		Summaries:  repo,
		Summarizer: svc,
		Logger:     baseLogger.With("component", "pipeline"),
	})
	q := queue.New(pipeline, queue.Options{
		Articles: repo,
		Probe:    svc,
		Linger:   cfg.Queue.CompletedLinger,
		Logger:   baseLogger.With("component", "queue"),
	})
	pipeline.UseRunner(q)

	ingestor := usecase.NewIngestor(articleSource, repo, baseLogger.With("component", "ingest"))

	a := &Application{
		cfg:         cfg,
		logger:      baseLogger,
		repo:        repo,
		Ingestor:    ingestor,
		Pipeline:    pipeline,
		Queue:       q,
		Publisher:   usecase.NewPublisher(repo, store, notifier, baseLogger.With("component", "publish")),
		Catalogue:   usecase.NewCatalogue(store, svc, baseLogger.With("component", "catalogue")),
		Maintenance: usecase.NewMaintenance(repo, repo, repo, svc),
	}
	if cfg.Scheduler.IngestInterval > 0 {
		a.Scheduler = usecase.NewScheduler(
			scheduler.NewIntervalScheduler(cfg.Scheduler.IngestInterval),
			ingestor, cfg.Scheduler.IngestDays, baseLogger.With("component", "scheduler"))
	}

	baseLogger.Info("application initialised",
		"database", cfg.Database.Path,
		"content_dir", cfg.Content.Dir,
		"model", generator.Model(),
		"telegram", notifier != nil)
	return a, nil
}

// Close releases the database.
func (a *Application) Close() error {
	return a.repo.Close()
}

// Run serves the HTTP API with the queue worker and the optional ingest
// scheduler until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	h := handler.New(handler.Deps{
		Ingestor:    a.Ingestor,
		Pipeline:    a.Pipeline,
		Queue:       a.Queue,
		Publisher:   a.Publisher,
		Catalogue:   a.Catalogue,
		Maintenance: a.Maintenance,
		Logger:      a.logger.With("component", "http"),
	})
	a.server = &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: api.NewRouter(h, api.RouterOptions{
			AdminEnabled: a.cfg.AdminRoutesEnabled(),
			Logger:       a.logger.With("component", "http"),
		}),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr, "admin", a.cfg.AdminRoutesEnabled())
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return ignoreCancel(a.Queue.Run(gCtx))
	})

	if a.Scheduler != nil {
		g.Go(func() error {
			if err := a.Scheduler.Start(gCtx); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			<-gCtx.Done()
			return a.Scheduler.Stop(context.Background())
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// WithWorker runs fn while the queue worker drains submitted work, for
// one-shot commands that process without the HTTP server.
func (a *Application) WithWorker(ctx context.Context, fn func(ctx context.Context) error) error {
	workerCtx, stop := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(workerCtx)

	g.Go(func() error {
		return ignoreCancel(a.Queue.Run(gCtx))
	})
	g.Go(func() error {
		defer stop()
		return fn(gCtx)
	})
	return g.Wait()
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
