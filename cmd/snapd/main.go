package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	snaps "github.com/stellarsnaps/stellarsnaps-go"
	"github.com/stellarsnaps/stellarsnaps-go/internal/config"
	"github.com/stellarsnaps/stellarsnaps-go/internal/infrastructure/database"
	"github.com/stellarsnaps/stellarsnaps-go/internal/infrastructure/repository"
	"github.com/stellarsnaps/stellarsnaps-go/internal/present/rest"
	"github.com/stellarsnaps/stellarsnaps-go/internal/service"
	"github.com/stellarsnaps/stellarsnaps-go/internal/telemetry"
	"github.com/stellarsnaps/stellarsnaps-go/internal/usecase"
	"github.com/stellarsnaps/stellarsnaps-go/resolver"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx := context.Background()

	if cfg.Server.EnableTrace {
		shutdown, err := telemetry.Setup(ctx, "snapd", cfg.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up tracing: " + err.Error())
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)
	mc := database.NewMemcached(cfg.Server.MemcachedAddr)

	snapRepo := repository.NewSnapRepository(db, mc)
	registryRepo := repository.NewRegistryRepository(db)
	redisCache := repository.NewRedisCache(rdb)

	events := service.NewEventService(rdb)

	snapUC := usecase.NewSnapUsecase(snapRepo, events)
	registryUC := usecase.NewRegistryUsecase(registryRepo)
	buildTxUC := usecase.NewBuildTxUsecase()
	resolveUC := usecase.NewResolveUsecase(resolver.New(), redisCache)

	// The server always trusts itself.
	err = registryUC.Register(ctx, snaps.RegistryEntry{
		Domain:      cfg.Site.FQDN,
		Status:      snaps.StatusTrusted,
		Name:        cfg.Site.Name,
		Description: cfg.Site.Description,
		Icon:        cfg.Site.Icon,
	})
	if err != nil {
		slog.Warn(
			"failed to register own domain",
			slog.String("error", err.Error()),
			slog.String("module", "main"),
		)
	}

	h := rest.NewHandler(cfg.Site, snapUC, registryUC, buildTxUC, resolveUC, events)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware("snapd"))
	}

	h.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(cfg.Server.Listen))
}
