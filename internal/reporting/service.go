package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/internal/registry"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

// Snapshot is the dashboard readout. Every value is recomputed from the
// registry and the log on each call; nothing is cached and nothing drifts.
type Snapshot struct {
	Today types.Date `json:"today"`

	TotalItems  int64 `json:"total_items"`
	Available   int64 `json:"available"`
	CheckedOut  int64 `json:"checked_out"`
	Overdue     int64 `json:"overdue"`
	Maintenance int64 `json:"maintenance"`
	Lost        int64 `json:"lost"`

	ActiveCheckouts       int64 `json:"active_checkouts"`
	TotalTransactions     int64 `json:"total_transactions"`
	CompletedTransactions int64 `json:"completed_transactions"`
	TotalCustodians       int64 `json:"total_custodians"`

	// Percentages, two decimal places.
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	OverdueRate     decimal.Decimal `json:"overdue_rate"`
}

// Service recomputes dashboard metrics on demand.
type Service interface {
	Snapshot(ctx context.Context, today types.Date) (*Snapshot, error)
}

type service struct {
	items registry.Repository
	log   ledger.Repository
	clock func() time.Time
}

// NewService wires a reporting service with the provided repositories.
func NewService(items registry.Repository, log ledger.Repository) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("registry repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{items: items, log: log, clock: time.Now}, nil
}

var hundred = decimal.NewFromInt(100)

func (s *service) Snapshot(ctx context.Context, today types.Date) (*Snapshot, error) {
	if today.IsZero() {
		today = types.DateOf(s.clock().UTC())
	}

	counts, err := s.items.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	// Every item the sweep has flagged counts as overdue, plus any
	// CheckedOut item already past its due date that the sweep has not
	// reached yet.
	dueItems, err := s.items.ListDueBefore(ctx, today)
	if err != nil {
		return nil, err
	}
	overdue := counts[enums.ItemStatusOverdue]
	for _, item := range dueItems {
		if item.Status == enums.ItemStatusCheckedOut {
			overdue++
		}
	}

	logCounts, err := s.log.Counts(ctx)
	if err != nil {
		return nil, err
	}

	out := &Snapshot{
		Today:                 today,
		Available:             counts[enums.ItemStatusAvailable],
		Maintenance:           counts[enums.ItemStatusMaintenance],
		Lost:                  counts[enums.ItemStatusLost],
		Overdue:               overdue,
		TotalTransactions:     logCounts.Total,
		CompletedTransactions: logCounts.Completed,
		TotalCustodians:       logCounts.TotalCustodians,
	}

	// items in custody: checked out or flagged overdue
	out.ActiveCheckouts = counts[enums.ItemStatusCheckedOut] + counts[enums.ItemStatusOverdue]
	out.CheckedOut = out.ActiveCheckouts - overdue
	if out.CheckedOut < 0 {
		out.CheckedOut = 0
	}
	for _, total := range counts {
		out.TotalItems += total
	}

	out.UtilizationRate = percentage(out.ActiveCheckouts, out.TotalItems)
	out.OverdueRate = percentage(overdue, out.ActiveCheckouts)
	return out, nil
}

// percentage returns part/whole as a two-decimal percentage, zero when the
// denominator is zero.
func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero.Round(2)
	}
	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		Round(2)
}
