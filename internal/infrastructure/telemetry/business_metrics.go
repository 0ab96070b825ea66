package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks ledger activity: collections, payments, version
// conflicts and report exports. A nil *BusinessMetrics is valid and records
// nothing.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	collectionTotal       *Counter
	collectionAmountTotal *Counter
	paymentTotal          *Counter
	paymentAmountTotal    *Counter
	conflictTotal         *Counter
	reportExportTotal     *Counter
	reportRenderDuration  *Histogram

	activeSuppliers    *Gauge
	outstandingBalance *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider supplies point-in-time ledger figures for the gauges
type LedgerMetricsProvider interface {
	// ActiveSupplierCount returns the number of active, non-deleted suppliers
	ActiveSupplierCount(ctx context.Context) (int64, error)
	// OutstandingBalance returns collections minus payments across all suppliers
	OutstandingBalance(ctx context.Context) (decimal.Decimal, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	LedgerProvider LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	counters := []struct {
		dst        **Counter
		name, desc string
		unit       string
	}{
		{&bm.collectionTotal, "ledger_collection_created_total", "Total number of collections recorded", "{collections}"},
		{&bm.collectionAmountTotal, "ledger_collection_amount_total", "Total collection value in minor currency units", "{cents}"},
		{&bm.paymentTotal, "ledger_payment_created_total", "Total number of payments recorded", "{payments}"},
		{&bm.paymentAmountTotal, "ledger_payment_amount_total", "Total payment value in minor currency units", "{cents}"},
		{&bm.conflictTotal, "ledger_version_conflict_total", "Writes rejected because the client version was stale", "{conflicts}"},
		{&bm.reportExportTotal, "ledger_report_export_total", "PDF report exports", "{exports}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.reportRenderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_report_render_duration_seconds",
		Description: "Time spent rendering a report to PDF",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.activeSuppliers, err = NewGauge(cfg.Meter,
		"ledger_active_suppliers", "Number of active suppliers", "{suppliers}")
	if err != nil {
		return nil, err
	}

	bm.outstandingBalance, err = NewGauge(cfg.Meter,
		"ledger_outstanding_balance", "Collections minus payments in minor currency units", "{cents}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordCollection counts a new collection and its priced total
func (bm *BusinessMetrics) RecordCollection(ctx context.Context, unit string, total decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.collectionTotal.Inc(ctx, AttrUnit.String(unit))
	bm.collectionAmountTotal.Add(ctx, toCents(total), AttrUnit.String(unit))
}

// RecordPayment counts a new payment and its amount
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, paymentType string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.paymentTotal.Inc(ctx, AttrPaymentType.String(paymentType))
	bm.paymentAmountTotal.Add(ctx, toCents(amount), AttrPaymentType.String(paymentType))
}

// RecordConflict counts a write rejected with a version conflict
func (bm *BusinessMetrics) RecordConflict(ctx context.Context, entity string) {
	if bm == nil {
		return
	}
	bm.conflictTotal.Inc(ctx, AttrEntity.String(entity))
}

// RecordReportExport counts a PDF export and how long it took
func (bm *BusinessMetrics) RecordReportExport(ctx context.Context, report string, d time.Duration, err error) {
	if bm == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	bm.reportExportTotal.Inc(ctx, AttrReportFormat.String(report), AttrOutcome.String(outcome))
	bm.reportRenderDuration.RecordDuration(ctx, d, AttrReportFormat.String(report), AttrOutcome.String(outcome))
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// StartPeriodicCollection refreshes the ledger gauges every interval
// (default 5 minutes). It does not block; call Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm == nil {
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.CollectLedgerMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.CollectLedgerMetrics(ctx)
		}
	}
}

// CollectLedgerMetrics records the gauges once
func (bm *BusinessMetrics) CollectLedgerMetrics(ctx context.Context) {
	if bm == nil {
		return
	}
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping gauge collection")
		return
	}

	if count, err := bm.ledgerProvider.ActiveSupplierCount(ctx); err != nil {
		bm.logger.Warn("Failed to count active suppliers", zap.Error(err))
	} else {
		bm.activeSuppliers.Record(ctx, count)
	}

	if balance, err := bm.ledgerProvider.OutstandingBalance(ctx); err != nil {
		bm.logger.Warn("Failed to compute outstanding balance", zap.Error(err))
	} else {
		bm.outstandingBalance.Record(ctx, toCents(balance))
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	if bm == nil {
		return
	}
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
