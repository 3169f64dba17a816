package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"avalia_backend/internal/auth"
	"avalia_backend/internal/events"
	"avalia_backend/internal/geocoding"
	apphttp "avalia_backend/internal/http"
	"avalia_backend/internal/http/router"
	"avalia_backend/internal/locations"
	"avalia_backend/internal/pdf"
	"avalia_backend/internal/reports"
	reportsrepo "avalia_backend/internal/reports/repository"
	reportsservice "avalia_backend/internal/reports/service"
	"avalia_backend/internal/valuation"
	valuationservice "avalia_backend/internal/valuation/service"
	"avalia_backend/internal/wizard"
	"avalia_backend/platform/cache"
	"avalia_backend/platform/config"
	"avalia_backend/platform/db"
	platformevents "avalia_backend/platform/events"
	"avalia_backend/platform/logger"
	"avalia_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "reportsBackend", cfg.GetReportsBackend())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var health healthChecks

	rdb := connectRedis(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
		health = append(health, cache.NewPingAdapter(rdb))
	}

	pool := connectPostgres(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
		health = append(health, db.NewPoolAdapter(pool))
	}

	// Event bus for decoupled communication between modules
	eventBus := platformevents.NewInMemoryBus(log)
	registerAuditLog(eventBus, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	table, err := locations.Brazil()
	if err != nil {
		log.Error("failed to load location table", "error", err)
		panic("failed to load location table: " + err.Error())
	}

	geocoder := geocoding.NewService(cfg, log)
	if rdb != nil {
		geocoder.WithCache(geocoding.NewRedisCache(rdb, cfg.GetGeocodeCacheTTL(), log))
	}

	generator, err := valuationservice.NewGeminiGenerator(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		panic("failed to initialize gemini client: " + err.Error())
	}
	log.Info("gemini client initialized", "model", cfg.GetGeminiModel())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	reportsModule := reports.NewModule(newReportRepository(cfg, rdb, pool), log)
	valuationModule := valuation.NewModule(generator, reportsModule.Service(), cfg.GetValuationTimeout(), eventBus, val, log)
	wizardModule := wizard.NewModule(cfg.GetWizardTTL(), geocoder, table, valuationModule.Service(), eventBus, val, log)
	authModule := auth.NewModule(cfg, eventBus, val, log)
	pdfModule := newPDFModule(ctx, cfg, reportsModule.Service(), eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			locations.NewModule(table),
			geocoding.NewModule(geocoder),
			wizardModule,
			valuationModule,
			authModule,
			reportsModule,
			pdfModule,
		},
	}
	if len(health) > 0 {
		app.Health = health
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wizardModule.RunSweeper(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		eventBus.Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// connectRedis is fatal only when Redis holds the report lists; otherwise
// the geocode cache is simply skipped.
func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; reverse geocoding cache disabled")
		return nil
	}

	var rdb *redis.Client
	err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		c, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = c
		return nil
	})
	if err != nil {
		if cfg.GetReportsBackend() == config.ReportsBackendRedis {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		log.Warn("redis unavailable; reverse geocoding cache disabled", "error", err)
		return nil
	}
	log.Info("redis connection established")
	return rdb
}

func connectPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if cfg.GetReportsBackend() != config.ReportsBackendPostgres {
		return nil
	}

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")
	return pool
}

func newReportRepository(cfg *config.Config, rdb *redis.Client, pool *pgxpool.Pool) reportsrepo.Repository {
	switch cfg.GetReportsBackend() {
	case config.ReportsBackendRedis:
		return reportsrepo.NewRedis(rdb)
	case config.ReportsBackendPostgres:
		return reportsrepo.NewPostgres(pool)
	default:
		return reportsrepo.NewMemory()
	}
}

func newPDFModule(ctx context.Context, cfg *config.Config, reports *reportsservice.Service, eventBus events.Bus, log *logger.Logger) *pdf.Module {
	if !cfg.IsGotenbergEnabled() {
		log.Warn("GOTENBERG_URL not configured; pdf export disabled")
		return pdf.NewModule(reports, nil, nil, eventBus, log)
	}
	log.Info("gotenberg PDF generator initialized", "url", cfg.GetGotenbergURL())

	var store pdf.ObjectStore
	if cfg.IsMinIOEnabled() {
		minioStore, err := pdf.NewMinIOStore(cfg)
		if err == nil {
			err = withRetry(ctx, log, "ensure report-pdfs bucket", 5, 2*time.Second, func() error {
				return minioStore.EnsureBucketExists(ctx)
			})
		}
		if err != nil {
			log.Error("pdf cache disabled", "error", err, "bucket", cfg.GetMinIOBucketReportPDFs())
		} else {
			store = minioStore
			log.Info("storage service initialized", "reportPDFsBucket", cfg.GetMinIOBucketReportPDFs())
		}
	}

	return pdf.NewModule(reports, pdf.NewGotenbergClient(cfg), store, eventBus, log)
}

// registerAuditLog records domain events in the application log.
func registerAuditLog(bus events.Bus, log *logger.Logger) {
	audit := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		switch e := event.(type) {
		case events.UserSignedIn:
			log.WithContext(ctx).Info("user signed in", "email", e.Email)
		case events.ValuationCompleted:
			log.WithContext(ctx).Info("valuation completed", "report_id", e.ReportID, "city", e.City, "persisted", e.Persisted)
		case events.WizardSubmitted:
			log.WithContext(ctx).Info("wizard submitted", "wizard_id", e.WizardID, "report_id", e.ReportID)
		}
		return nil
	})
	for _, name := range []string{
		events.UserSignedIn{}.EventName(),
		events.ValuationCompleted{}.EventName(),
		events.WizardSubmitted{}.EventName(),
	} {
		bus.Subscribe(name, audit)
	}
}

// healthChecks pings every durable store.
type healthChecks []apphttp.HealthChecker

func (h healthChecks) Ping(ctx context.Context) error {
	for _, c := range h {
		if err := c.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
