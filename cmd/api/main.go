package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/krisztak/kidevent/internal/api"
	"github.com/krisztak/kidevent/internal/api/handler"
	"github.com/krisztak/kidevent/internal/api/middleware"
	"github.com/krisztak/kidevent/internal/application"
	"github.com/krisztak/kidevent/internal/config"
	"github.com/krisztak/kidevent/internal/infrastructure/postgres"
	redisinfra "github.com/krisztak/kidevent/internal/infrastructure/redis"
	"github.com/krisztak/kidevent/internal/pkg/logger"
	"github.com/krisztak/kidevent/internal/pkg/metrics"
	"github.com/krisztak/kidevent/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET が設定されていません")
	}

	m := metrics.Init()

	// データベース
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	childRepo := postgres.NewChildRepository(db)

	deps := map[string]handler.Pinger{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	// Redis は任意。接続できない場合はDBの行ロックと一意制約のみで整合性を保つ
	var locker application.RegistrationLocker
	if cfg.Redis.Enabled() {
		client, err := redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redisに接続できないため申込ロックなしで起動します", zap.Error(err))
		} else {
			defer client.Close()
			locker = redisinfra.NewRegistrationLocker(client, cfg.Redis.LockTTL)
			deps["redis"] = redisPinger(client)
		}
	}

	eventService := application.NewEventService(txManager, eventRepo).
		WithRefreshParallelism(cfg.Worker.StatusRefreshParallel)
	registrationService := application.NewRegistrationService(txManager, eventRepo, registrationRepo, childRepo, locker)
	childService := application.NewChildService(childRepo)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))
	handler.RegisterRoutes(e, handler.Handlers{
		Health:       handler.NewHealthHandler(deps),
		Event:        handler.NewEventHandler(eventService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Child:        handler.NewChildHandler(childService),
	}, middleware.JWTAuth(cfg.Auth.JWTSecret))

	// ワーカー
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresher := worker.NewStatusRefresher(eventService, cfg.Worker.StatusRefreshInterval)
	go refresher.Start(ctx)

	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return func(ctx context.Context) error { return redisinfra.Ping(ctx, client) }
}
