package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shopoverlay/api/routes"
	"github.com/angelmondragon/shopoverlay/internal/checkout"
	"github.com/angelmondragon/shopoverlay/internal/host"
	"github.com/angelmondragon/shopoverlay/internal/receipts"
	"github.com/angelmondragon/shopoverlay/internal/session"
	pkgAuth "github.com/angelmondragon/shopoverlay/pkg/auth"
	"github.com/angelmondragon/shopoverlay/pkg/config"
	"github.com/angelmondragon/shopoverlay/pkg/db"
	"github.com/angelmondragon/shopoverlay/pkg/instance"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/angelmondragon/shopoverlay/pkg/metrics"
	"github.com/angelmondragon/shopoverlay/pkg/migrate"
	"github.com/angelmondragon/shopoverlay/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopbridge"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopbridge",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := mintToken(cfg, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "shopbridge stopped unexpectedly", err)
		os.Exit(1)
	}
}

// mintToken prints a signed token for the host script or the overlay page.
func mintToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	role := fs.String("role", string(pkgAuth.RoleOverlay), "token role: host|overlay")
	subject := fs.String("subject", "", "token subject (defaults to a random id)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		*subject = uuid.NewString()
	}
	token, err := pkgAuth.MintToken(cfg.Host, time.Now(), pkgAuth.TokenPayload{
		Subject: *subject,
		Role:    pkgAuth.Role(*role),
		JTI:     uuid.NewString(),
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, checkout rate limiting and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	settlementMetrics := metrics.NewSettlementMetrics(registry)
	eligibilityMetrics := metrics.NewEligibilityMetrics(registry)

	hostClient, err := host.NewClient(cfg.Host.BaseURL,
		host.WithResource(cfg.Host.Resource),
		host.WithTimeout(cfg.Host.Timeout),
	)
	if err != nil {
		return fmt.Errorf("host client: %w", err)
	}

	sess, err := session.New(hostClient, logg, session.KeyBindings{
		ClearCart:  cfg.Keys.ClearCart,
		ToggleMode: cfg.Keys.ToggleMode,
		Dismiss:    cfg.Keys.Dismiss,
	})
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	dispatcher, err := host.NewDispatcher(sess, logg)
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	stream, err := host.NewStreamHandler(dispatcher, logg)
	if err != nil {
		return fmt.Errorf("stream handler: %w", err)
	}

	var receiptService receipts.Service
	if cfg.FeatureFlags.Receipts {
		receiptService, err = receipts.NewService(receipts.NewRepository(dbClient.DB()))
		if err != nil {
			return fmt.Errorf("receipts service: %w", err)
		}
	}

	checkoutService, err := checkout.NewService(sess, hostClient, receiptService, settlementMetrics, logg, checkout.Options{
		SettleTimeout: cfg.Checkout.SettleTimeout,
		SaleFallback:  cfg.Checkout.SaleFallback,
	})
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	deps := routes.Dependencies{
		DB:         dbClient,
		Redis:      redisClient,
		Session:    sess,
		Checkout:   checkoutService,
		Receipts:   receiptService,
		Dispatcher: dispatcher,
		Stream:     stream,
		Rejections: eligibilityMetrics,
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   instance.GetID(),
		"session_id": sess.ID().String(),
		"host_url":   cfg.Host.BaseURL,
	})
	logg.Info(ctx, "starting shopbridge")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down shopbridge")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
