package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/cache"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/database"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/infra/repository"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/lock"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/present/rest"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/service"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to setup trace provider", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = database.MigratePostgres(db)
	if err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	userRepo := repository.NewUserRepository(db)
	promoRepo := repository.NewPromoRepository(db)

	eventCache := cache.NewEventCache(mc)

	locks := lock.New()

	registrationUsecase := usecase.NewRegistrationUsecase(locks, eventRepo, registrationRepo)
	eventUsecase := usecase.NewEventUsecase(eventRepo, eventCache)
	userUsecase := usecase.NewUserUsecase(userRepo)
	promoUsecase := usecase.NewPromoUsecase(promoRepo)

	authService := service.NewAuthService(conf.Auth.Secret)
	signalService := service.NewSignalService(rdb)

	handler := rest.NewHandler(
		registrationUsecase,
		eventUsecase,
		userUsecase,
		promoUsecase,
		authService,
		signalService,
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("atcloud"))
	}

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName("atcloud"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown trace provider", slog.String("error", err.Error()))
		}
	}
	return cleanup, nil
}
