package registry

import (
	"context"
	"errors"
	"time"

	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository manages persistence for registered equipment items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindBySerial(ctx context.Context, serial string) (*models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	ListByStatus(ctx context.Context, status enums.ItemStatus) ([]models.Item, error)
	ListDueBefore(ctx context.Context, cutoff types.Date) ([]models.Item, error)
	SetCheckedOut(ctx context.Context, serial string, custodian string, dueDate types.Date) error
	SetReturned(ctx context.Context, serial string, status enums.ItemStatus) error
	SetStatus(ctx context.Context, serial string, status enums.ItemStatus) error
	CountByStatus(ctx context.Context) (map[enums.ItemStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an item repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindBySerial(ctx context.Context, serial string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "serial_number = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return nil, err
	}
	return &item, nil
}

// Listings follow registration order, with the serial number breaking ties
// between items registered in the same instant.
func (r *repository) ListAll(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, serial_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ItemStatus) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, serial_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListDueBefore returns items still in custody whose due date falls strictly
// before the cutoff.
func (r *repository) ListDueBefore(ctx context.Context, cutoff types.Date) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.ItemStatus{enums.ItemStatusCheckedOut, enums.ItemStatusOverdue}).
		Where("due_date < ?", cutoff).
		Order("due_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) SetCheckedOut(ctx context.Context, serial string, custodian string, dueDate types.Date) error {
	return r.update(ctx, serial, map[string]any{
		"status":            enums.ItemStatusCheckedOut,
		"current_custodian": custodian,
		"due_date":          dueDate,
		"updated_at":        time.Now().UTC(),
	})
}

// SetReturned clears custody fields alongside the new status.
func (r *repository) SetReturned(ctx context.Context, serial string, status enums.ItemStatus) error {
	return r.update(ctx, serial, map[string]any{
		"status":            status,
		"current_custodian": "",
		"due_date":          nil,
		"updated_at":        time.Now().UTC(),
	})
}

func (r *repository) SetStatus(ctx context.Context, serial string, status enums.ItemStatus) error {
	return r.update(ctx, serial, map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (r *repository) update(ctx context.Context, serial string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("serial_number = ?", serial).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.ItemStatus]int64, error) {
	type row struct {
		Status enums.ItemStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.ItemStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}
