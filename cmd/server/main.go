package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/oralrisk/internal/application/service"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/infrastructure/crypto"
	"github.com/turtacn/oralrisk/internal/infrastructure/events"
	"github.com/turtacn/oralrisk/internal/infrastructure/ml"
	"github.com/turtacn/oralrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence"
	"github.com/turtacn/oralrisk/internal/interfaces/http"
	"github.com/turtacn/oralrisk/internal/interfaces/http/handlers"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})
	if err != nil {
		log.Fatalf("Failed to create startup logger: %v", err)
	}

	// Load config
	loader := config.NewLoader(*configFile, startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	if setter, ok := appLogger.(logger.LevelSetter); ok {
		loader.Watch(func(updated *config.Config) {
			if err := setter.SetLevel(updated.Log.Level); err != nil {
				appLogger.Warn(context.Background(), "Ignoring log level change", logger.Fields{"level": updated.Log.Level, "error": err.Error()})
				return
			}
			appLogger.Info(context.Background(), "Log level updated", logger.Fields{"level": updated.Log.Level})
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal(context.Background(), "Server exited with error", err)
	}
	appLogger.Info(context.Background(), "Server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	// Initialize storage
	stores, err := persistence.NewStores(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	if stores.Migrator != nil {
		from, err := stores.Migrator.Migrate(ctx)
		if err != nil {
			_ = stores.Close()
			return err
		}
		appLogger.Info(ctx, "Prediction log schema checked", logger.Fields{"from_version": from})
	}

	// Load the trained classifier
	artifacts := ml.NewArtifactStore(&cfg.AWS, appLogger)
	pipeline, err := artifacts.LoadArtifact(ctx, cfg.Model.ArtifactPath)
	if err != nil {
		_ = stores.Close()
		return err
	}
	appLogger.Info(ctx, "Model loaded", logger.Fields{"artifact": cfg.Model.ArtifactPath, "classes": pipeline.Classes()})

	// Resolve the token signing secret
	var secrets crypto.SecretSource
	if cfg.Vault.Enabled {
		if secrets, err = crypto.NewVaultClient(&cfg.Vault, appLogger); err != nil {
			_ = stores.Close()
			return err
		}
	}
	secret, err := crypto.ResolveSigningSecret(ctx, cfg, secrets, appLogger)
	if err != nil {
		_ = stores.Close()
		return err
	}
	tokenManager := crypto.NewJWTManager(secret, cfg.JWT.Issuer, cfg.JWT.TTLDuration(), appLogger)

	// Event publisher
	publisher := service.NewNoopPublisher()
	if cfg.Kafka.Enabled {
		if publisher, err = events.NewKafkaProducer(cfg.Kafka, appLogger); err != nil {
			_ = stores.Close()
			return err
		}
	}

	// Metrics
	registry := monitoring.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	// Initialize application services
	accountSvc := appservice.NewAccountAppService(stores.Accounts, crypto.NewBcryptHasher(constants.DefaultBcryptCost), metrics, appLogger)
	predictionSvc := appservice.NewPredictionAppService(pipeline, stores.Predictions, publisher, metrics, appLogger)
	tokenSvc := appservice.NewTokenAppService(accountSvc, tokenManager, appLogger)

	// Initialize HTTP handlers and router
	webHandler := handlers.NewWebHandler(accountSvc, predictionSvc, stores.Sessions, handlers.CookieConfig{
		Secure: cfg.Session.CookieSecure,
		MaxAge: int(cfg.Session.TTLDuration().Seconds()),
	}, appLogger)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"accounts":    stores.Accounts,
		"predictions": stores.Predictions,
		"sessions":    stores.Sessions,
	}, appLogger)

	router, err := http.NewRouter(cfg, appLogger, registry, metrics, stores.Sessions, tokenSvc, stores.Limiter,
		webHandler,
		handlers.NewAuthHandler(tokenSvc, appLogger),
		handlers.NewPredictionHandler(predictionSvc, appLogger),
		healthHandler,
	)
	if err != nil {
		_ = stores.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		err := router.Stop(shutdownCtx)
		if cerr := publisher.Close(); cerr != nil {
			appLogger.Error(shutdownCtx, "Failed to close event publisher", cerr)
		}
		if cerr := stores.Close(); cerr != nil {
			appLogger.Error(shutdownCtx, "Failed to close storage", cerr)
		}
		if cerr := tracing.Shutdown(shutdownCtx); cerr != nil {
			appLogger.Error(shutdownCtx, "Failed to flush traces", cerr)
		}
		return err
	})
	return g.Wait()
}
