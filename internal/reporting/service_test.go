package reporting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quartermasterlabs/armory-backend/internal/ledger"
	"github.com/quartermasterlabs/armory-backend/internal/registry"
	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	"github.com/quartermasterlabs/armory-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: is a distinct database
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.Exec(`
		CREATE TABLE items (
			id                TEXT PRIMARY KEY,
			serial_number     TEXT NOT NULL UNIQUE,
			name              TEXT NOT NULL,
			category          TEXT NOT NULL DEFAULT '',
			location          TEXT NOT NULL DEFAULT '',
			status            TEXT NOT NULL DEFAULT 'available',
			current_custodian TEXT NOT NULL DEFAULT '',
			due_date          DATE,
			created_at        DATETIME,
			updated_at        DATETIME
		)`).Error)
	require.NoError(t, conn.Exec(`
		CREATE TABLE transactions (
			id            TEXT PRIMARY KEY,
			seq           INTEGER NOT NULL UNIQUE,
			txn_id        TEXT NOT NULL UNIQUE,
			serial_number TEXT NOT NULL,
			item_name     TEXT NOT NULL DEFAULT '',
			custodian_id  TEXT NOT NULL DEFAULT '',
			custodian     TEXT NOT NULL,
			checkout_date DATE NOT NULL,
			due_date      DATE NOT NULL,
			checkin_date  DATE,
			condition     TEXT NOT NULL DEFAULT '',
			outcome       TEXT NOT NULL DEFAULT 'active',
			notes         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME
		)`).Error)

	return conn
}

func mustCreateItem(t *testing.T, conn *gorm.DB, serial string, status enums.ItemStatus, due types.Date) {
	t.Helper()

	item := &models.Item{
		ID:           uuid.New(),
		SerialNumber: serial,
		Name:         "Gear " + serial,
		Status:       status,
		DueDate:      due,
	}
	if status == enums.ItemStatusCheckedOut || status == enums.ItemStatusOverdue {
		item.CurrentCustodian = "SGT Reyes"
	}
	require.NoError(t, conn.Create(item).Error)
}

func mustAppendTxn(t *testing.T, conn *gorm.DB, seq int64, serial, custodian string, outcome enums.TransactionOutcome) {
	t.Helper()

	txn := &models.Transaction{
		ID:           uuid.New(),
		Seq:          seq,
		TxnID:        models.FormatTxnID(seq),
		SerialNumber: serial,
		Custodian:    custodian,
		CheckoutDate: types.NewDate(2024, 1, 1),
		DueDate:      types.NewDate(2024, 1, 8),
		Outcome:      outcome,
	}
	require.NoError(t, conn.Create(txn).Error)
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(registry.NewRepository(conn), ledger.NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestSnapshotTwoItemExample(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	today := types.NewDate(2024, 1, 10)

	// A available, B checked out and past due
	mustCreateItem(t, conn, "A", enums.ItemStatusAvailable, types.Date{})
	mustCreateItem(t, conn, "B", enums.ItemStatusCheckedOut, types.NewDate(2024, 1, 1))
	mustAppendTxn(t, conn, 1, "B", "SGT Reyes", enums.TransactionOutcomeActive)

	snap, err := svc.Snapshot(context.Background(), today)
	require.NoError(t, err)

	require.EqualValues(t, 2, snap.TotalItems)
	require.EqualValues(t, 1, snap.Available)
	require.EqualValues(t, 1, snap.Overdue)
	require.EqualValues(t, 0, snap.CheckedOut)
	require.EqualValues(t, 1, snap.ActiveCheckouts)
	require.True(t, snap.UtilizationRate.Equal(decimal.RequireFromString("50.00")),
		"utilization = %s", snap.UtilizationRate)
	require.True(t, snap.OverdueRate.Equal(decimal.RequireFromString("100.00")),
		"overdue rate = %s", snap.OverdueRate)
}

func TestSnapshotEmptyRegistry(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)

	snap, err := svc.Snapshot(context.Background(), types.NewDate(2024, 1, 10))
	require.NoError(t, err)

	require.Zero(t, snap.TotalItems)
	require.True(t, snap.UtilizationRate.IsZero())
	require.True(t, snap.OverdueRate.IsZero())
}

func TestSnapshotCountsFlaggedOverdueRegardlessOfDueDate(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	today := types.NewDate(2024, 1, 10)

	// flagged overdue but with a due date the sweep ran against yesterday
	mustCreateItem(t, conn, "A", enums.ItemStatusOverdue, types.NewDate(2024, 1, 15))
	// checked out past due, not yet swept
	mustCreateItem(t, conn, "B", enums.ItemStatusCheckedOut, types.NewDate(2024, 1, 5))
	mustAppendTxn(t, conn, 1, "A", "SGT Reyes", enums.TransactionOutcomeActive)
	mustAppendTxn(t, conn, 2, "B", "CPL Diaz", enums.TransactionOutcomeActive)

	snap, err := svc.Snapshot(context.Background(), today)
	require.NoError(t, err)

	require.EqualValues(t, 2, snap.Overdue)
	require.EqualValues(t, 0, snap.CheckedOut)
	require.EqualValues(t, 2, snap.ActiveCheckouts)
}

func TestSnapshotCountsEveryStatus(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	today := types.NewDate(2024, 1, 10)

	mustCreateItem(t, conn, "A", enums.ItemStatusAvailable, types.Date{})
	mustCreateItem(t, conn, "B", enums.ItemStatusAvailable, types.Date{})
	mustCreateItem(t, conn, "C", enums.ItemStatusCheckedOut, types.NewDate(2024, 1, 20))
	mustCreateItem(t, conn, "D", enums.ItemStatusOverdue, types.NewDate(2024, 1, 2))
	mustCreateItem(t, conn, "E", enums.ItemStatusMaintenance, types.Date{})
	mustCreateItem(t, conn, "F", enums.ItemStatusLost, types.Date{})

	mustAppendTxn(t, conn, 1, "D", "SGT Reyes", enums.TransactionOutcomeActive)
	mustAppendTxn(t, conn, 2, "C", "CPL Diaz", enums.TransactionOutcomeActive)
	mustAppendTxn(t, conn, 3, "A", "CPL Diaz", enums.TransactionOutcomeCompleted)

	snap, err := svc.Snapshot(context.Background(), today)
	require.NoError(t, err)

	require.EqualValues(t, 6, snap.TotalItems)
	require.EqualValues(t, 2, snap.Available)
	require.EqualValues(t, 1, snap.CheckedOut)
	require.EqualValues(t, 1, snap.Overdue)
	require.EqualValues(t, 1, snap.Maintenance)
	require.EqualValues(t, 1, snap.Lost)
	require.EqualValues(t, 2, snap.ActiveCheckouts)

	require.EqualValues(t, 3, snap.TotalTransactions)
	require.EqualValues(t, 1, snap.CompletedTransactions)
	require.EqualValues(t, 2, snap.TotalCustodians)

	// 2 of 6 in custody, 1 of those overdue
	require.True(t, snap.UtilizationRate.Equal(decimal.RequireFromString("33.33")),
		"utilization = %s", snap.UtilizationRate)
	require.True(t, snap.OverdueRate.Equal(decimal.RequireFromString("50.00")),
		"overdue rate = %s", snap.OverdueRate)
}
