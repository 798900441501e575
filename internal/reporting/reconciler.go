package reporting

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/config"
)

// Reconciler periodically rebuilds every area's reconciliation report.
// Areas are processed concurrently up to a limit, and a failure in one
// area never blocks or fails the others.
type Reconciler struct {
	repos       *application.Repositories
	store       ReportStore
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
}

func NewReconciler(repos *application.Repositories, store ReportStore, cfg config.ReportingConfig, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		repos:       repos,
		store:       store,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// Start runs the reconcile loop until the context is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("reconciler started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce rebuilds the report for every known area.
func (r *Reconciler) RunOnce(ctx context.Context) {
	areaIDs, err := r.repos.Accounts.ListAreaIDs(ctx)
	if err != nil {
		r.logger.Error("failed to list areas", "error", err)
		return
	}

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, areaID := range areaIDs {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(areaID string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := r.reconcileArea(ctx, areaID); err != nil {
				r.logger.Error("failed to reconcile area", "area_id", areaID, "error", err)
			}
		}(areaID)
	}

	wg.Wait()
}

func (r *Reconciler) reconcileArea(ctx context.Context, areaID string) error {
	suspended, err := r.repos.Payments.FindSuspendedByArea(ctx, areaID)
	if err != nil {
		return err
	}
	unsettled, err := r.repos.Payments.FindUnsettledByArea(ctx, areaID)
	if err != nil {
		return err
	}

	report := buildReport(areaID, suspended, unsettled, time.Now())
	if err := r.store.Save(ctx, report); err != nil {
		return err
	}

	r.logger.Debug("area reconciled",
		"area_id", areaID,
		"suspended", report.SuspendedCount,
		"unsettled", report.UnsettledCount)
	return nil
}
