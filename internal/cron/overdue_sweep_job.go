package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/quartermasterlabs/armory-backend/internal/registry"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	"github.com/quartermasterlabs/armory-backend/pkg/logger"
	"github.com/quartermasterlabs/armory-backend/pkg/metrics"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OverdueSweepJobParams configure the overdue status sweep.
type OverdueSweepJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Items   registry.Repository
	Metrics *metrics.TransactionMetrics
}

// NewOverdueSweepJob builds the cron job that flags past-due equipment.
func NewOverdueSweepJob(params OverdueSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("registry repository required")
	}
	return &overdueSweepJob{
		logg:  params.Logger,
		db:    params.DB,
		items: params.Items,
		txm:   params.Metrics,
		now:   time.Now,
	}, nil
}

type overdueSweepJob struct {
	logg  *logger.Logger
	db    txRunner
	items registry.Repository
	txm   *metrics.TransactionMetrics
	now   func() time.Time
}

func (j *overdueSweepJob) Name() string { return "overdue-sweep" }

// Run flags every checked-out item past its due date as overdue and
// publishes the overdue gauge. Items already flagged stay flagged; check-in
// is the only path back out.
func (j *overdueSweepJob) Run(ctx context.Context) error {
	today := types.DateOf(j.now().UTC())

	items, err := j.items.ListDueBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("query past-due items: %w", err)
	}

	var errs []error
	flagged := 0
	for _, item := range items {
		if item.Status != enums.ItemStatusCheckedOut {
			continue
		}
		if err := j.flag(ctx, item); err != nil {
			errs = append(errs, fmt.Errorf("flag %s: %w", item.SerialNumber, err))
			continue
		}
		flagged++
	}

	j.txm.SetOverdueItems(len(items))

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"past_due": len(items),
		"flagged":  flagged,
		"today":    today.String(),
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return multierr.Combine(errs...)
}

func (j *overdueSweepJob) flag(ctx context.Context, item models.Item) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.items.WithTx(tx).SetStatus(ctx, item.SerialNumber, enums.ItemStatusOverdue)
	})
}
