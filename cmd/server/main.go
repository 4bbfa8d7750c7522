package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/config"
	"github.com/mamadbah2/tarekpos/internal/repository/mongodb"
	"github.com/mamadbah2/tarekpos/internal/repository/sheets"
	"github.com/mamadbah2/tarekpos/internal/scheduler"
	"github.com/mamadbah2/tarekpos/internal/server/handlers"
	"github.com/mamadbah2/tarekpos/internal/server/router"
	ledgersvc "github.com/mamadbah2/tarekpos/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/tarekpos/internal/service/reporting"
	salessvc "github.com/mamadbah2/tarekpos/internal/service/sales"
	stocksvc "github.com/mamadbah2/tarekpos/internal/service/stock"
	"github.com/mamadbah2/tarekpos/pkg/clients/alert"
	"github.com/mamadbah2/tarekpos/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	kvStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := kvStore.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("google sheets not configured, report exports disabled")
	}

	stockStore := stocksvc.NewStore(kvStore, cfg.Alerts.LowStockThreshold, baseLogger.Named("svc.stock"))
	salesLedger := ledgersvc.NewLedger(kvStore, baseLogger.Named("svc.ledger"))
	coordinator := salessvc.NewCoordinator(stockStore, salesLedger, baseLogger.Named("svc.sales"))
	reportingSvc := reportingsvc.NewService(sheetsRepo, salesLedger, baseLogger.Named("svc.reporting"))

	var alertClient alert.Client
	if cfg.Alerts.WebhookURL != "" {
		alertClient = alert.NewWebhookClient(cfg.Alerts.WebhookURL)
		baseLogger.Info("low stock alerts enabled")
	} else {
		baseLogger.Warn("alert webhook missing, low stock alerts disabled")
	}

	salesHandler := handlers.NewSalesHandler(coordinator, salesLedger, baseLogger.Named("handlers.sales"))
	stockHandler := handlers.NewStockHandler(stockStore, baseLogger.Named("handlers.stock"))
	reportHandler := handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.report"))
	engine := router.New(salesHandler, stockHandler, reportHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, stockStore, alertClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
