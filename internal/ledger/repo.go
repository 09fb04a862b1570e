package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/pagination"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
	"gorm.io/gorm"
)

// Counts summarizes the ledger for the dashboard aggregator.
type Counts struct {
	Total           int64
	Completed       int64
	Active          int64
	TotalCustodians int64
}

// Repository manages persistence for the append-only checkout log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextSeq(ctx context.Context) (int64, error)
	Append(ctx context.Context, txn *models.Transaction) error
	FindActiveBySerial(ctx context.Context, serial string) (*models.Transaction, error)
	Complete(ctx context.Context, txnID string, checkinDate types.Date, condition enums.Condition, notes string) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Transaction, error)
	ListBySerial(ctx context.Context, serial string) ([]models.Transaction, error)
	Counts(ctx context.Context) (Counts, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextSeq returns max(seq)+1. Callers must hold the engine's critical
// section so two checkouts cannot observe the same maximum.
func (r *repository) NextSeq(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repository) Append(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindActiveBySerial(ctx context.Context, serial string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Where("serial_number = ? AND outcome = ?", serial, enums.TransactionOutcomeActive).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNoActiveCheckout, "no active checkout for this serial number")
		}
		return nil, err
	}
	return &txn, nil
}

// Complete closes an active log entry. Completed rows are immutable, so
// the outcome guard keeps a double check-in from rewriting one.
func (r *repository) Complete(ctx context.Context, txnID string, checkinDate types.Date, condition enums.Condition, notes string) error {
	fields := map[string]any{
		"checkin_date": checkinDate,
		"condition":    condition,
		"outcome":      enums.TransactionOutcomeCompleted,
	}
	if strings.TrimSpace(notes) != "" {
		fields["notes"] = notes
	}

	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("txn_id = ? AND outcome = ?", txnID, enums.TransactionOutcomeActive).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNoActiveCheckout, "no active checkout for this transaction id")
	}
	return nil
}

// List pages the log newest-first on the ledger sequence.
func (r *repository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Order("seq DESC").Limit(limit)
	if cursor != nil {
		q = q.Where("seq < ?", cursor.Seq)
	}

	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListBySerial(ctx context.Context, serial string) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("serial_number = ?", serial).
		Order("seq ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	var out Counts

	type row struct {
		Outcome enums.TransactionOutcome
		Total   int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("outcome, COUNT(*) AS total").
		Group("outcome").
		Scan(&rows).Error; err != nil {
		return Counts{}, err
	}
	for _, rw := range rows {
		out.Total += rw.Total
		switch rw.Outcome {
		case enums.TransactionOutcomeCompleted:
			out.Completed = rw.Total
		case enums.TransactionOutcomeActive:
			out.Active = rw.Total
		}
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COUNT(DISTINCT custodian)").
		Scan(&out.TotalCustodians).Error; err != nil {
		return Counts{}, err
	}
	return out, nil
}
