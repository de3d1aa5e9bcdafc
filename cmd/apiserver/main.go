// API server entry point for MedReg-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/config"
	neo4jdriver "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/MedReg-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/MedReg-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MedReg-Intelligence/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
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

	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting MedReg-Intelligence API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *migrate {
		if err := postgres.Migrate(cfg.Database, logger); err != nil {
			logger.Fatal("database migration failed", logging.Err(err))
		}
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", logging.Err(err))
	}
	defer conn.Close()

	store := pgrepo.NewRecordRepo(conn.Pool(), logger)
	metrics := prometheus.NewEngineMetrics()

	checkers := []handlers.HealthChecker{
		handlers.CheckerFunc{ComponentName: "postgres", Fn: conn.HealthCheck},
	}

	deps := engine.Deps{
		Store:   store,
		Config:  cfg.Engine,
		Logger:  logger,
		Metrics: metrics,
	}

	// Optional adapters degrade to a warning so the analysis API stays up
	// when a side channel is down.
	if rc, err := redisclient.NewClient(cfg.Redis, logger); err != nil {
		logger.Warn("redis unavailable, caching disabled", logging.Err(err))
	} else {
		defer rc.Close()
		deps.Cache = redisclient.NewAnalysisCache(rc, logger,
			redisclient.WithPrefix(cfg.Redis.KeyPrefix),
			redisclient.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "redis", Fn: rc.HealthCheck})
	}

	if cfg.Neo4j.Enabled {
		if nd, err := neo4jdriver.NewDriver(cfg.Neo4j, logger); err != nil {
			logger.Warn("neo4j unavailable, graph export disabled", logging.Err(err))
		} else {
			defer nd.Close()
			deps.Graph = neo4jrepo.NewGraphRepo(nd, logger)
			checkers = append(checkers, handlers.CheckerFunc{ComponentName: "neo4j", Fn: nd.HealthCheck})
		}
	}

	if producer, err := kafka.NewProducer(cfg.Kafka, logger); err != nil {
		logger.Warn("kafka unavailable, verdict publication disabled", logging.Err(err))
	} else {
		defer producer.Close()
		deps.Publisher = kafka.NewVerdictPublisher(producer, logger)
	}

	eng, err := engine.New(deps)
	if err != nil {
		logger.Fatal("failed to build analysis engine", logging.Err(err))
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AnalysisHandler: handlers.NewAnalysisHandler(eng, logger),
		HealthHandler:   handlers.NewHealthHandler(version, checkers...),
		Logger:          logger,
		MetricsHandler:  metrics.Handler(),
		Mode:            cfg.Server.Mode,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("HTTP server error", logging.Err(err))
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("shutdown error", logging.Err(err))
	}
}
