package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/gudang-backend/api/routes"
	"github.com/angelmondragon/gudang-backend/internal/auth"
	"github.com/angelmondragon/gudang-backend/internal/categories"
	"github.com/angelmondragon/gudang-backend/internal/goodsin"
	"github.com/angelmondragon/gudang-backend/internal/goodsout"
	"github.com/angelmondragon/gudang-backend/internal/items"
	"github.com/angelmondragon/gudang-backend/internal/ledger"
	"github.com/angelmondragon/gudang-backend/internal/users"
	"github.com/angelmondragon/gudang-backend/pkg/auth/session"
	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
	"github.com/angelmondragon/gudang-backend/pkg/metrics"
	"github.com/angelmondragon/gudang-backend/pkg/migrate"
	"github.com/angelmondragon/gudang-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOnErr(logg, "failed to create auth service", err)

	userService, err := users.NewService(userRepo, dbClient, sessionManager, cfg.Password)
	exitOnErr(logg, "failed to create user service", err)

	categoryService, err := categories.NewService(categories.NewRepository(conn), dbClient)
	exitOnErr(logg, "failed to create category service", err)

	itemService, err := items.NewService(items.NewRepository(conn), dbClient)
	exitOnErr(logg, "failed to create item service", err)

	ledgerService, err := ledger.NewService(ledger.NewRepository(conn))
	exitOnErr(logg, "failed to create ledger service", err)

	goodsInService, err := goodsin.NewService(goodsin.NewRepository(conn), ledgerService, dbClient)
	exitOnErr(logg, "failed to create goods-in service", err)

	goodsOutService, err := goodsout.NewService(goodsout.NewRepository(conn), ledgerService, dbClient, metrics.NewApprovalMetrics(registry))
	exitOnErr(logg, "failed to create goods-out service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registry,
			metrics.NewHTTPMetrics(registry),
			authService,
			userService,
			categoryService,
			itemService,
			goodsInService,
			goodsOutService,
			ledgerService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func exitOnErr(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
