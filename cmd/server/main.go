package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskforge/backend/api/handler"
	"github.com/taskforge/backend/internal/config"
	"github.com/taskforge/backend/internal/infrastructure/activity"
	"github.com/taskforge/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskforge/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskforge/backend/internal/infrastructure/redis"
	"github.com/taskforge/backend/internal/middleware"
	"github.com/taskforge/backend/internal/router"
	"github.com/taskforge/backend/internal/services"
	"github.com/taskforge/backend/internal/services/lifecycle"
	"github.com/taskforge/backend/internal/token"
	"github.com/taskforge/backend/pkg/httpcontext"
	"github.com/taskforge/backend/pkg/logger"
	"github.com/taskforge/backend/repository/postgres"
	authUC "github.com/taskforge/backend/usecase/auth"
	taskUC "github.com/taskforge/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	activityStore, err := activity.Open(cfg.Activity.Path, "activity")
	if err != nil {
		zapLogger.Fatal("failed to open activity journal", zap.Error(err))
	}
	manager.Register("activity", func(ctx context.Context) error {
		return activityStore.Close()
	})

	mon := monitor.New(pool, redisClient, activityStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	janitor := services.NewJanitor(activityStore, zapLogger, services.JanitorConfig{
		Schedule:  cfg.Activity.PruneSchedule,
		Retention: cfg.Activity.Retention,
	})
	if err := janitor.Start(); err != nil {
		zapLogger.Fatal("janitor start failed", zap.Error(err))
	}
	manager.Register("janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	tokens := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	authUseCase := authUC.New(userRepo, tokens, cfg.Auth.BcryptCost, zapLogger)
	taskUseCase := taskUC.New(taskRepo, activityStore, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.SecureCookies),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(tokens, userRepo, ctxAdapter, zapLogger)
	var limitMiddleware router.Middleware
	if cfg.RateLimit.Enabled {
		limitMiddleware = middleware.RateLimit(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, zapLogger)
	}
	r := router.New(handlers, authMiddleware, limitMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
