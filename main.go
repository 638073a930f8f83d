package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apotek/advisor"
	"apotek/auth"
	"apotek/automation"
	"apotek/catalog"
	"apotek/config"
	"apotek/finance"
	"apotek/loader"
	"apotek/logger"
	"apotek/metrics"
	"apotek/opname"
	"apotek/order"
	"apotek/receiving"
	"apotek/returns"
	"apotek/supplier"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", zap.String("path", cfg.Database.Path))
	db, err := loader.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := loader.InitDatabase(ctx, db, log, cfg.Inventory.SeedDemoData); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	svc := newServices(ctx, cfg, db, log)
	defer svc.Opname.Shutdown()

	mux := http.NewServeMux()
	SetupRoutes(mux, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           Handler(mux, svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", "http://localhost"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServices builds the domain services on top of one database.
func newServices(ctx context.Context, cfg config.Config, db *sqlx.DB, log *zap.Logger) services {
	adv, err := advisor.NewGemini(ctx, cfg.Advisor.APIKey, cfg.Advisor.ExplainModel, cfg.Advisor.SuggestModel, log)
	if err != nil {
		log.Warn("advisor unavailable, continuing without it", zap.Error(err))
		adv = advisor.Disabled{}
	}

	m := metrics.New()
	store := catalog.NewStore(db, log)
	printer := automation.NewPrinter(cfg.Automation.BrowserBin, log)

	return services{
		Store:     store,
		Suppliers: supplier.NewService(db, log),
		Orders:    order.NewService(store, adv, printer, lowStockThreshold, log),
		Receiving: receiving.NewService(store, m, log),
		Opname:    opname.NewManager(store, adv, m, log),
		Returns:   returns.NewService(store, m, log),
		Finance:   finance.NewService(store, lowStockThreshold, log),
		Auth:      auth.NewService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
		Metrics:   m,
	}
}
