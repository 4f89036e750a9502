// Command server runs the tokengate HTTP service.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/tokengate/tokengate/internal/config"
	"github.com/tokengate/tokengate/internal/domain/service"
	"github.com/tokengate/tokengate/internal/infrastructure/audit"
	"github.com/tokengate/tokengate/internal/infrastructure/crypto"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/infrastructure/persistence/redis"
	"github.com/tokengate/tokengate/internal/infrastructure/principal"
	"github.com/tokengate/tokengate/internal/infrastructure/secrets"
	tokenhttp "github.com/tokengate/tokengate/internal/interfaces/http"
	"github.com/tokengate/tokengate/internal/interfaces/http/handlers"
	"github.com/tokengate/tokengate/internal/interfaces/http/middleware"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	cfg, v, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, setLevel := monitoring.NewZapLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.WatchLogLevel(ctx, v, setLevel, appLogger)

	tracing, err := monitoring.NewTracingManager(cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "initialize tracing", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			appLogger.Warn(context.Background(), "tracing shutdown failed", logger.Error(err))
		}
	}()

	signingSecrets, err := secrets.Resolve(ctx, cfg.Vault, cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "resolve signing secrets", err)
	}

	redisConn, err := redis.Connect(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "connect redis", err)
	}
	defer redisConn.Close()

	db, err := principal.OpenDatabase(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "open user directory", err)
	}

	var auditPublisher service.AuditService = audit.NewNoopPublisher()
	if cfg.Kafka.Enabled {
		auditPublisher = audit.NewKafkaPublisher(cfg.Kafka, appLogger)
	}
	defer auditPublisher.Close()

	metrics := monitoring.NewMetrics()
	store := redis.NewSessionStore(redisConn.Client())
	registry := redis.NewSessionRegistry(store, cfg.Auth.AppName)
	codec := crypto.NewJWTCodec(signingSecrets.AccessSecret, signingSecrets.RefreshSecret, cfg.Auth.AppName)
	principals := principal.NewGormLoader(db, appLogger)

	lifecycle := service.NewTokenLifecycleService(
		service.Config{
			AppName:       cfg.Auth.AppName,
			Mode:          constants.SessionMode(cfg.Auth.Mode),
			AccessExpire:  cfg.Auth.AccessExpire,
			RefreshExpire: cfg.Auth.RefreshExpire,
			OAuthAppID:    cfg.Auth.OAuthAppID,
		},
		codec, registry, auditPublisher, appLogger,
	)

	gate := middleware.Gate(middleware.GateConfig{
		Mode:                constants.SessionMode(cfg.Auth.Mode),
		Carrier:             constants.TokenCarrier(cfg.Auth.TokenCarrier),
		TokenKey:            cfg.Auth.TokenKey,
		AlwaysSuccessStatus: cfg.Auth.AlwaysSuccessStatus,
	}, lifecycle, metrics, appLogger)

	server := tokenhttp.NewServer(tokenhttp.RouterDependencies{
		Config:  cfg,
		Logger:  appLogger,
		Metrics: metrics,
		Tracing: tracing,
		AuthHandler: handlers.NewAuthHandler(handlers.AuthHandlerConfig{
			Mode:                constants.SessionMode(cfg.Auth.Mode),
			AccessUnique:        cfg.Auth.AccessUnique,
			AccessValid:         cfg.Auth.AccessValid,
			AlwaysSuccessStatus: cfg.Auth.AlwaysSuccessStatus,
			Carrier:             constants.TokenCarrier(cfg.Auth.TokenCarrier),
			TokenKey:            cfg.Auth.TokenKey,
			AccessExpire:        cfg.Auth.AccessExpire,
		}, lifecycle, principals, metrics, appLogger),
		AdminHandler:  handlers.NewAdminHandler(cfg.Auth.AlwaysSuccessStatus, lifecycle, metrics, appLogger),
		HealthHandler: handlers.NewHealthHandler(store, version),
		Gate:          gate,
	})

	if err := server.Run(ctx); err != nil {
		appLogger.Fatal(context.Background(), "http server failed", err)
	}
	appLogger.Info(context.Background(), "shutdown complete")
}
