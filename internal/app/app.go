package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/matchwatch/matchwatch/internal/config"
	"github.com/matchwatch/matchwatch/internal/domain/matchbatch"
	cacherepo "github.com/matchwatch/matchwatch/internal/infrastructure/repository/cache"
	"github.com/matchwatch/matchwatch/internal/infrastructure/repository/memory"
	"github.com/matchwatch/matchwatch/internal/infrastructure/repository/postgres"
	"github.com/matchwatch/matchwatch/internal/interfaces/httpapi"
	basecache "github.com/matchwatch/matchwatch/internal/platform/cache"
	"github.com/matchwatch/matchwatch/internal/platform/logging"
	"github.com/matchwatch/matchwatch/internal/platform/resilience"
	"github.com/matchwatch/matchwatch/internal/usecase"
)

// NewHTTPServer wires the full service: repository (postgres or memory),
// cache decorator, services, handler and middleware chain.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	repo, cleanup, err := newBatchRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		repo = cacherepo.NewBatchRepository(repo, basecache.NewStore(cfg.CacheTTL))
	}

	batchSvc := usecase.NewBatchService(repo)
	scanSvc := usecase.NewPatternScanService(repo, cfg.PatternScanWorkers)
	querySvc := usecase.NewQueryService(repo, scanSvc)

	handler := httpapi.NewHandler(batchSvc, querySvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newBatchRepository(cfg config.Config, logger *logging.Logger) (matchbatch.Repository, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Info("storage driver: memory")
		return memory.NewBatchRepository(), func() {}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: cfg.DBCircuitFailureCount,
		OpenTimeout:      cfg.DBCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.DBCircuitHalfOpenMaxReq,
	})
	breaker := resilience.NewCircuitBreaker(
		breakerCfg.FailureThreshold,
		breakerCfg.OpenTimeout,
		breakerCfg.HalfOpenMaxReq,
	)
	repo := postgres.NewBatchRepository(db, breaker, postgres.Limits{
		Query:   cfg.QueryLimit,
		Matchup: cfg.MatchupHistoryLimit,
		Scan:    cfg.PatternScanLimit,
	})

	logger.Info("storage driver: postgres", "db", dbNameFromURL(cfg.DBURL))
	return repo, func() { _ = db.Close() }, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
