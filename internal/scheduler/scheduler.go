// Package scheduler runs the periodic stock audit and expiring-lot sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/fekuna/shelter-inventory-service/internal/stock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Config struct {
	AuditSchedule  string // cron spec, empty disables the job
	ExpirySchedule string
	ExpiryWindow   time.Duration
	JobTimeout     time.Duration
}

type TenantLister interface {
	ListTenants(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	cron    *cron.Cron
	stock   stock.UseCase
	tenants TenantLister
	cfg     Config
	logger  logger.ZapLogger
}

func New(cfg Config, stockUC stock.UseCase, tenants TenantLister, log logger.ZapLogger) (*Scheduler, error) {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	s := &Scheduler{
		cron:    cron.New(),
		stock:   stockUC,
		tenants: tenants,
		cfg:     cfg,
		logger:  log,
	}

	jobs := map[string]struct {
		schedule string
		run      func(ctx context.Context)
	}{
		"stock_audit":  {cfg.AuditSchedule, s.RunAudit},
		"expiry_sweep": {cfg.ExpirySchedule, s.RunExpirySweep},
	}
	for name, job := range jobs {
		if job.schedule == "" {
			continue
		}
		run := job.run
		if _, err := s.cron.AddFunc(job.schedule, func() { s.runJob(run) }); err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runJob(run func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	run(ctx)
}

// RunAudit audits every tenant and logs drifting items.
func (s *Scheduler) RunAudit(ctx context.Context) {
	tenants, err := s.tenants.ListTenants(ctx)
	if err != nil {
		s.logger.Error("audit: failed to list tenants", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		findings, err := s.stock.Audit(ctx, tenant)
		if err != nil {
			s.logger.Error("audit failed", zap.String("tenant_id", tenant), zap.Error(err))
			continue
		}
		for _, f := range findings {
			s.logger.Warn("stock drift",
				zap.String("tenant_id", tenant),
				zap.String("item_id", f.ItemID),
				zap.String("item_name", f.ItemName),
				zap.String("cached", f.Cached.String()),
				zap.String("ledger_sum", f.LedgerSum.String()),
				zap.String("lot_sum", f.LotSum.String()),
			)
		}
	}
}

// RunExpirySweep logs lots with stock expiring inside the configured window.
func (s *Scheduler) RunExpirySweep(ctx context.Context) {
	tenants, err := s.tenants.ListTenants(ctx)
	if err != nil {
		s.logger.Error("expiry sweep: failed to list tenants", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		lots, err := s.stock.ExpiringLots(ctx, tenant, s.cfg.ExpiryWindow)
		if err != nil {
			s.logger.Error("expiry sweep failed", zap.String("tenant_id", tenant), zap.Error(err))
			continue
		}
		for _, l := range lots {
			s.logger.Info("lot expiring soon",
				zap.String("tenant_id", tenant),
				zap.String("item_id", l.ItemID),
				zap.String("lot_id", l.ID),
				zap.Time("expires_at", *l.ExpiresAt),
				zap.String("quantity", l.Quantity.String()),
			)
		}
	}
}
