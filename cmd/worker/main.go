// Background worker entry point.  On every tick it snapshots the record
// store, re-runs corpus analysis, and evaluates records for approval
// routing, publishing verdicts through the engine's kafka port.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/domain/record"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/prometheus"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	interval := flag.Duration("interval", 0, "evaluation interval (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: falling back to environment configuration: %v\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if *interval > 0 {
		cfg.Worker.Interval = *interval
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	logger.Info("starting MedReg-Intelligence worker",
		logging.String("version", version),
		logging.Duration("interval", cfg.Worker.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", logging.Err(err))
	}
	defer conn.Close()

	store := pgrepo.NewRecordRepo(conn.Pool(), logger)
	metrics := prometheus.NewEngineMetrics()

	deps := engine.Deps{
		Store:   store,
		Config:  cfg.Engine,
		Logger:  logger,
		Metrics: metrics,
	}

	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		logger.Warn("kafka unavailable, verdicts will not be published", logging.Err(err))
	} else {
		defer producer.Close()
		deps.Publisher = kafka.NewVerdictPublisher(producer, logger)
	}

	eng, err := engine.New(deps)
	if err != nil {
		logger.Fatal("failed to build analysis engine", logging.Err(err))
	}

	runPass(ctx, cfg, eng, store, metrics, logger)

	ticker := time.NewTicker(cfg.Worker.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case <-ticker.C:
			runPass(ctx, cfg, eng, store, metrics, logger)
		}
	}
}

// runPass executes one analysis and evaluation cycle.
func runPass(ctx context.Context, cfg *config.Config, eng engine.Engine, store record.Store, metrics *prometheus.EngineMetrics, logger logging.Logger) {
	started := time.Now()

	if cfg.Worker.PublishOnly == "" {
		if _, err := eng.AnalyzeAll(ctx); err != nil {
			logger.Error("analysis pass failed", logging.Err(err))
			return
		}
	}

	corpus, err := record.Snapshot(ctx, store)
	if err != nil {
		logger.Error("snapshot failed", logging.Err(err))
		return
	}
	metrics.SetSnapshotSize(corpus.Len())

	evaluated := 0
	for _, rec := range corpus.All() {
		if cfg.Worker.BatchSize > 0 && evaluated >= cfg.Worker.BatchSize {
			break
		}
		if ctx.Err() != nil {
			return
		}
		dto := rec.ToDTO()
		if rec.IsLegalCase() {
			eng.EvaluateLegalCase(ctx, dto)
		} else {
			eng.EvaluateRegulatoryUpdate(ctx, dto)
		}
		evaluated++
	}

	logger.Info("evaluation pass complete",
		logging.Int("records", corpus.Len()),
		logging.Int("evaluated", evaluated),
		logging.Duration("duration", time.Since(started)),
	)
}
