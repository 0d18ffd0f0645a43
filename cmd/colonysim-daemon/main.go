package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/colonysim-go/internal/adapters/api"
	"github.com/andrescamacho/colonysim-go/internal/adapters/cache"
	"github.com/andrescamacho/colonysim-go/internal/adapters/grpc"
	"github.com/andrescamacho/colonysim-go/internal/adapters/httpapi"
	"github.com/andrescamacho/colonysim-go/internal/adapters/logging"
	"github.com/andrescamacho/colonysim-go/internal/adapters/metrics"
	"github.com/andrescamacho/colonysim-go/internal/adapters/persistence"
	characterCmd "github.com/andrescamacho/colonysim-go/internal/application/character/commands"
	characterQuery "github.com/andrescamacho/colonysim-go/internal/application/character/queries"
	colonyCmd "github.com/andrescamacho/colonysim-go/internal/application/colony/commands"
	colonyQuery "github.com/andrescamacho/colonysim-go/internal/application/colony/queries"
	"github.com/andrescamacho/colonysim-go/internal/application/colony/services"
	"github.com/andrescamacho/colonysim-go/internal/application/common"
	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
	referenceCmd "github.com/andrescamacho/colonysim-go/internal/application/reference/commands"
	referenceQuery "github.com/andrescamacho/colonysim-go/internal/application/reference/queries"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/database"
	"github.com/andrescamacho/colonysim-go/internal/infrastructure/pidfile"
)

func main() {
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configPath := flag.String("config", "", "Path to config file (default: search ./, ./configs, /etc/colonysim)")
	flag.Parse()

	fmt.Println("colonysim daemon v0.1.0")
	fmt.Println("=======================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(cfg.Daemon.ShutdownTimeout); killErr != nil {
			log.Fatalf("Failed to kill existing daemon: %v", killErr)
		}
		fmt.Println("Existing daemon killed")
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		_ = pf.Release()
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	clock := shared.NewRealClock()

	// 1. Logging
	logger, err := logging.NewConsoleLogger(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// 2. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	characterRepo := persistence.NewGormCharacterRepository(db)
	referenceRepo := persistence.NewGormReferenceRepository(db)
	snapshotRepo := persistence.NewGormSnapshotRepository(db)
	runLogRepo := persistence.NewGormRunLogRepository(db, clock)

	// 3. Metrics
	var (
		registry          *prometheus.Registry
		commandMetrics    *metrics.CommandMetricsCollector
		aggregatorMetrics services.AggregatorMetrics
		requestMetrics    api.RequestMetrics
		esiClient         *api.ESIClient
	)
	if cfg.Metrics.Enabled {
		registry = metrics.InitRegistry()
		commandMetrics = metrics.NewCommandMetricsCollector()
		aggMetrics := metrics.NewAggregatorMetricsCollector()
		apiMetrics := metrics.NewAPIMetricsCollector(func() float64 {
			if esiClient == nil {
				return 0
			}
			return float64(esiClient.BreakerState())
		})
		for _, register := range []func(prometheus.Registerer) error{
			commandMetrics.Register, aggMetrics.Register, apiMetrics.Register,
		} {
			if err := register(registry); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		aggregatorMetrics = aggMetrics
		requestMetrics = apiMetrics
		fmt.Println("Metrics collection enabled")
	}

	// 4. Game API client behind the snapshot store
	esiClient = api.NewESIClient(api.NewRepositoryTokenSource(characterRepo), api.ClientOptions{
		BaseURL:         cfg.ESI.BaseURL,
		UserAgent:       cfg.ESI.UserAgent,
		Timeout:         cfg.ESI.Timeout,
		RequestsPerSec:  float64(cfg.ESI.RateLimit.Requests),
		Burst:           cfg.ESI.RateLimit.Burst,
		MaxRetries:      cfg.ESI.Retry.MaxAttempts,
		BackoffBase:     cfg.ESI.Retry.BackoffBase,
		BreakerFailures: cfg.ESI.CircuitBreaker.MaxFailures,
		BreakerCooldown: cfg.ESI.CircuitBreaker.Cooldown,
		Metrics:         requestMetrics,
	}, clock)
	snapshots := persistence.NewCachedSnapshotProvider(esiClient, snapshotRepo, cfg.ESI.SnapshotMaxAge, clock)
	fmt.Println("API client initialized")

	// 5. Digest store
	var store services.SummaryStore
	switch cfg.Cache.Backend {
	case "redis":
		redisStore, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{
			Addr:      cfg.Cache.Addr,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			TTL:       cfg.Cache.TTL,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return err
		}
		defer redisStore.Close()
		store = redisStore
	default:
		store = cache.NewMemoryStore(cfg.Cache.TTL, clock)
	}
	fmt.Printf("Digest store initialized (%s)\n", cfg.Cache.Backend)

	// 6. Simulation pipeline
	simulator := planetary.NewSimulator(planetary.DecayModel{
		DecayFactor: cfg.Simulation.DecayFactor,
		Floor:       cfg.Simulation.YieldFloor,
	})
	pipeline := services.NewColonyPipeline(
		snapshots,
		services.NewReferenceCache(referenceRepo),
		simulator,
		services.NewResultCache(),
		store,
		aggregatorMetrics,
		clock,
		services.PipelineOptions{
			ReuseWindow:  cfg.Aggregator.ReuseWindow,
			ExpiringSoon: cfg.Aggregator.ExpiringSoon,
		},
	)
	aggregator := services.NewAggregator(pipeline, cfg.Aggregator.Concurrency, aggregatorMetrics)

	// 7. Mediator
	med := common.NewMediator()
	med.RegisterMiddleware(common.CharacterTokenMiddleware(characterRepo))
	if commandMetrics != nil {
		med.RegisterMiddleware(metrics.PrometheusMiddleware(commandMetrics))
	}

	if err := registerHandlers(med, handlerDeps{
		characters: characterRepo,
		references: referenceRepo,
		snapshots:  snapshots,
		pipeline:   pipeline,
		aggregator: aggregator,
		simulator:  simulator,
		store:      store,
		clock:      clock,
	}); err != nil {
		return err
	}
	fmt.Println("Handlers registered")

	// 8. Servers
	var runLogs logging.RunLogStore
	if cfg.Logging.PersistRuns {
		runLogs = runLogRepo
	}
	runner := grpc.NewRefreshRunner(med, cfg.Daemon.RefreshInterval, logger, runLogs, clock)

	daemon, err := grpc.NewDaemonServer(med, logger, cfg.Daemon.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	daemon.SetRefreshRunner(runner)
	daemon.SetShutdownTimeout(cfg.Daemon.ShutdownTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.HTTP.Enabled {
		router := httpapi.NewRouter(httpapi.RouterConfig{
			Colonies:    httpapi.NewColonyHandler(med, logger),
			Gatherer:    gathererOrNil(registry),
			MetricsPath: cfg.Metrics.Path,
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Logger:      logger,
		})
		server := httpapi.NewServer(cfg.HTTP.Address, router, cfg.Daemon.ShutdownTimeout)
		go func() {
			if err := server.ListenAndServe(ctx); err != nil {
				logger.Log("ERROR", "HTTP server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		fmt.Printf("HTTP API listening on %s\n", cfg.HTTP.Address)
	}

	fmt.Printf("Daemon listening on %s (pid %d)\n", cfg.Daemon.SocketPath, os.Getpid())
	return daemon.Start()
}

// gathererOrNil avoids handing the router a typed nil
func gathererOrNil(reg *prometheus.Registry) prometheus.Gatherer {
	if reg == nil {
		return nil
	}
	return reg
}

type handlerDeps struct {
	characters *persistence.GormCharacterRepository
	references *persistence.GormReferenceRepository
	snapshots  planetary.SnapshotProvider
	pipeline   *services.ColonyPipeline
	aggregator *services.Aggregator
	simulator  *planetary.Simulator
	store      services.SummaryStore
	clock      shared.Clock
}

func registerHandlers(med common.Mediator, d handlerDeps) error {
	registrations := []struct {
		name string
		err  error
	}{
		{"GetColonySummary", mediator.RegisterHandler[*colonyQuery.GetColonySummaryQuery](med, colonyQuery.NewGetColonySummaryHandler(d.pipeline))},
		{"ListColonySummaries", mediator.RegisterHandler[*colonyQuery.ListColonySummariesQuery](med, colonyQuery.NewListColonySummariesHandler(d.characters, d.snapshots, d.aggregator))},
		{"SimulateColony", mediator.RegisterHandler[*colonyQuery.SimulateColonyQuery](med, colonyQuery.NewSimulateColonyHandler(d.pipeline, d.simulator))},
		{"ListColonyDigests", mediator.RegisterHandler[*colonyQuery.ListColonyDigestsQuery](med, colonyQuery.NewListColonyDigestsHandler(d.store))},
		{"RefreshSnapshot", mediator.RegisterHandler[*colonyCmd.RefreshSnapshotCommand](med, colonyCmd.NewRefreshSnapshotHandler(d.pipeline, d.store, d.clock))},
		{"RegisterCharacter", mediator.RegisterHandler[*characterCmd.RegisterCharacterCommand](med, characterCmd.NewRegisterCharacterHandler(d.characters))},
		{"ListCharacters", mediator.RegisterHandler[*characterQuery.ListCharactersQuery](med, characterQuery.NewListCharactersHandler(d.characters))},
		{"GetCharacter", mediator.RegisterHandler[*characterQuery.GetCharacterQuery](med, characterQuery.NewGetCharacterHandler(d.characters))},
		{"ImportReference", mediator.RegisterHandler[*referenceCmd.ImportReferenceCommand](med, referenceCmd.NewImportReferenceHandler(d.references))},
		{"GetRecipe", mediator.RegisterHandler[*referenceQuery.GetRecipeQuery](med, referenceQuery.NewGetRecipeHandler(d.references))},
	}
	for _, r := range registrations {
		if r.err != nil {
			return fmt.Errorf("failed to register %s handler: %w", r.name, r.err)
		}
	}
	return nil
}
