package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/internal/server"
	"github.com/smartlands/landregistry/pkg/auth"
	"github.com/smartlands/landregistry/pkg/documents"
	"github.com/smartlands/landregistry/pkg/ledger/ethereum"
	"github.com/smartlands/landregistry/pkg/orchestrator"
	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/repository/inmemory"
	"github.com/smartlands/landregistry/pkg/repository/mongodb"
	"github.com/smartlands/landregistry/pkg/state"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := buildLogger(cfg)
	defer logger.Sync()

	ledgerClient, err := ethereum.NewClient(context.Background(), cfg, logger.With(zap.String("module", "ledger")))
	if err != nil {
		logger.Fatal("Failed to create ledger client", zap.Error(err))
	}
	defer ledgerClient.Close()

	journal, err := state.NewLevelDBStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open pending-registration journal", zap.Error(err))
	}
	defer journal.Close(context.Background())

	repo := buildRepository(cfg, logger.With(zap.String("module", "repository")))

	orch := orchestrator.New(
		cfg,
		logger.With(zap.String("module", "orchestrator")),
		repo,
		ledgerClient,
		journal,
	)

	reconcileAgent := orchestrator.NewAgent(cfg, logger.With(zap.String("module", "reconcile_agent")), orch)
	agentShutdownCh := make(chan chan error)
	go reconcileAgent.StartLoop(agentShutdownCh)

	gate := auth.NewGate(cfg, repo.Users())

	var documentStore documents.Store
	if cfg.Documents.PinataAPIKey != "" {
		documentStore = documents.NewPinataClient(cfg)
	} else {
		logger.Info("No pinning credentials configured, document uploads disabled")
		documentStore = documents.NoopStore{}
	}

	httpServer := server.NewServer(
		cfg,
		logger.With(zap.String("module", "server")),
		repo,
		ledgerClient,
		orch,
		gate,
		documentStore,
	)

	go func() {
		if err := httpServer.Run(); err != nil {
			logger.Fatal("Failed to run HTTP server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-stop

	logger.Info("Received shutdown signal!")

	errCh := make(chan error)
	select {
	case agentShutdownCh <- errCh:
		if err := <-errCh; err != nil {
			logger.Error("Failed to shutdown reconcile agent", zap.Error(err))
		} else {
			logger.Info("Reconcile agent shutdown successfully")
		}
	case <-time.After(time.Second * 5):
		logger.Warn("Timed out waiting for reconcile agent to shutdown")
	}
}

func buildLogger(cfg config.Config) *zap.Logger {
	var logCfg zap.Config
	if cfg.Production {
		logCfg = zap.NewProductionConfig()

		if cfg.PrettyLogs {
			logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			logCfg.Encoding = "console"
		}
	} else {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "error":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case "warn":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "info":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "debug":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

func buildRepository(cfg config.Config, logger *zap.Logger) repository.Repository {
	if cfg.MongoDB.URI == "" {
		logger.Warn("No MongoDB URI configured, using volatile in-memory repository")
		return inmemory.NewRepository()
	}

	opts := options.Client().
		ApplyURI(cfg.MongoDB.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	// Ping server
	if err := client.Ping(context.Background(), nil); err != nil {
		logger.Fatal("failed to ping MongoDB server", zap.Error(err))
	}

	repo := mongodb.NewMongoRepository(logger, client.Database(cfg.MongoDB.DatabaseName))
	if err := repo.InitSchema(context.Background()); err != nil {
		logger.Fatal("failed to initialize MongoDB schema", zap.Error(err))
	}

	return repo
}
