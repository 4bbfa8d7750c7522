package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/config"
	"github.com/mamadbah2/tarekpos/internal/domain/models"
	"github.com/mamadbah2/tarekpos/internal/service/reporting"
	"github.com/mamadbah2/tarekpos/pkg/clients/alert"
)

// StockScanner is the inventory surface the low-stock job reads.
type StockScanner interface {
	LowStock(ctx context.Context) ([]models.StockItem, error)
}

// Scheduler manages scheduled tasks: the nightly spreadsheet export and the
// low-stock alert scan.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	stockSvc     StockScanner
	alertClient  alert.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, stockSvc StockScanner, alertClient alert.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		stockSvc:     stockSvc,
		alertClient:  alertClient,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runScheduledExport); err != nil {
		s.logger.Error("failed to schedule report export", zap.Error(err))
	}

	if s.alertClient != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runLowStockScan); err != nil {
			s.logger.Error("failed to schedule low stock scan", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runScheduledExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	err := s.reportingSvc.Export(ctx, reporting.ExportFilter{})
	switch {
	case err == nil:
		s.logger.Info("scheduled export completed")
	case errors.Is(err, reporting.ErrNoData):
		s.logger.Info("scheduled export skipped, no sales records")
	case errors.Is(err, reporting.ErrExportDisabled):
		s.logger.Debug("scheduled export skipped, no spreadsheet configured")
	default:
		s.logger.Error("scheduled export failed", zap.Error(err))
	}
}

func (s *Scheduler) runLowStockScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	items, err := s.stockSvc.LowStock(ctx)
	if err != nil {
		s.logger.Error("low stock scan failed", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	payload := alert.StockAlert{
		Title: "Low stock alert",
		Body:  fmt.Sprintf("%d product(s) at or below the low-stock threshold", len(items)),
	}
	for _, item := range items {
		payload.Items = append(payload.Items, alert.StockAlertRow{
			Name:     item.Name,
			Category: string(item.Category),
			Quantity: item.Quantity.String(),
			Unit:     item.UnitLabel(),
		})
	}

	if err := s.alertClient.SendStockAlert(ctx, payload); err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
		return
	}
	s.logger.Info("low stock alert sent", zap.Int("items", len(items)))
}
