package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/go-playground/validator/v10"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/qinyiguo/volvo-ops-platform/config"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/businessledger"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/partscatalog"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/partsledger"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/repairincome"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/techperformance"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/trackeditem"
	"github.com/qinyiguo/volvo-ops-platform/internal/repositories/uploadhistory"
	"github.com/qinyiguo/volvo-ops-platform/pkg/database"
	"github.com/qinyiguo/volvo-ops-platform/pkg/derive"
	"github.com/qinyiguo/volvo-ops-platform/pkg/ingest"
	"github.com/qinyiguo/volvo-ops-platform/pkg/middleware"
	"github.com/qinyiguo/volvo-ops-platform/pkg/routes/health"
	ingestroutes "github.com/qinyiguo/volvo-ops-platform/pkg/routes/ingest"
	"github.com/qinyiguo/volvo-ops-platform/pkg/routes/reports"
	trackeditemroutes "github.com/qinyiguo/volvo-ops-platform/pkg/routes/trackeditem"
	"github.com/qinyiguo/volvo-ops-platform/pkg/startup"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracing/exporters"
	"github.com/qinyiguo/volvo-ops-platform/pkg/tracking"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := newTracerProvider(ctx, cfg, logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	dbDep := &databaseDependency{cfg: &cfg, logger: logger}

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(dbDep)
	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	defer func() { _ = boot.Stop(context.Background()) }()

	db := dbDep.db

	itemRepo := trackeditem.NewRepository(db, logger)
	partsRepo := partsledger.NewRepository(db, logger)
	businessRepo := businessledger.NewRepository(db, logger)
	repairRepo := repairincome.NewRepository(db, logger)
	techRepo := techperformance.NewRepository(db, logger)
	catalogRepo := partscatalog.NewRepository(db, logger)
	historyRepo := uploadhistory.NewRepository(db, logger)

	engine := tracking.NewEngine(itemRepo, partsRepo, businessRepo, cfg.Branches, logger)
	deriver := derive.NewEngine(logger)
	loader := ingest.NewService(db, partsRepo, businessRepo, repairRepo, techRepo,
		catalogRepo, historyRepo, deriver, cfg.IngestBatchSize, logger)

	validate := validator.New()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	checker := health.NewChecker(db, cfg.Version)
	checker.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	reports.NewHandler(engine).Register(e.Group("/api/v1/reports"))
	trackeditemroutes.NewHandler(itemRepo, validate).Register(e.Group("/api/v1/tracking-items"))
	ingestroutes.NewHandler(loader, historyRepo, validate).Register(e.Group("/api/v1/ingest"))

	go func() {
		checker.SetReady(true)
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Infof("Starting %s on %s", cfg.AppName, addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server stopped")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.WithField("signal", s.String()).Info("Shutting down")
	case <-ctx.Done():
	}

	checker.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newTracerProvider(ctx context.Context, cfg config.Config, logger ectologger.Logger) *sdktrace.TracerProvider {
	var exporter sdktrace.SpanExporter = &exporters.NoopExporter{}
	if cfg.TracingEnabled {
		otlp, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Insecure: cfg.TracingOTLPInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to create OTLP exporter, tracing disabled")
		} else {
			exporter = otlp
		}
	}
	return tracing.NewTracerProvider(exporter, cfg.AppName)
}

// databaseDependency connects, tunes the pool and applies migrations before
// the service starts accepting traffic.
type databaseDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
}

func (d *databaseDependency) GetName() string {
	return "postgres"
}

func (d *databaseDependency) DependsOn() []string {
	return nil
}

func (d *databaseDependency) Start(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.cfg.DatabaseHost, d.cfg.DatabasePort, d.cfg.DatabaseUserName,
		d.cfg.DatabasePassword, d.cfg.DatabaseName, d.cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.ConnectContext(ctx, d.cfg.DatabaseDriver, dsn)
	if err != nil {
		return err
	}

	sqlxDB.SetMaxOpenConns(d.cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(d.cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(d.cfg.DatabaseConnMaxLifetime)

	driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(d.cfg.DatabaseName, driver); err != nil {
		return err
	}

	d.db = database.NewDatabaseInstance(sqlxDB, d.logger)
	return nil
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
