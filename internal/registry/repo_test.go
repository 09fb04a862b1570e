package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quartermasterlabs/armory-backend/pkg/db/models"
	"github.com/quartermasterlabs/armory-backend/pkg/enums"
	pkgerrors "github.com/quartermasterlabs/armory-backend/pkg/errors"
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

	return conn
}

func mustCreateTestItem(t *testing.T, conn *gorm.DB, serial string, status enums.ItemStatus) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:           uuid.New(),
		SerialNumber: serial,
		Name:         "M4 Carbine",
		Category:     "Weapon",
		Location:     "Rack 3",
		Status:       status,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

func TestRepositoryFindBySerial(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created := mustCreateTestItem(t, conn, "M4-0001", enums.ItemStatusAvailable)

	found, err := repo.FindBySerial(ctx, "M4-0001")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
	require.Equal(t, "M4 Carbine (M4-0001)", found.DisplayName())

	_, err = repo.FindBySerial(ctx, "NOPE-999")
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryCheckoutReturnCycle(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	mustCreateTestItem(t, conn, "NVG-0007", enums.ItemStatusAvailable)
	due := types.NewDate(2026, 5, 10)

	require.NoError(t, repo.SetCheckedOut(ctx, "NVG-0007", "SGT Reyes", due))

	out, err := repo.FindBySerial(ctx, "NVG-0007")
	require.NoError(t, err)
	require.Equal(t, enums.ItemStatusCheckedOut, out.Status)
	require.Equal(t, "SGT Reyes", out.CurrentCustodian)
	require.True(t, due.Equal(out.DueDate))

	require.NoError(t, repo.SetReturned(ctx, "NVG-0007", enums.ItemStatusMaintenance))

	back, err := repo.FindBySerial(ctx, "NVG-0007")
	require.NoError(t, err)
	require.Equal(t, enums.ItemStatusMaintenance, back.Status)
	require.Empty(t, back.CurrentCustodian)
	require.True(t, back.DueDate.IsZero())
}

func TestRepositoryUpdateUnknownSerial(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	err := repo.SetStatus(ctx, "GHOST-1", enums.ItemStatusLost)
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryListByStatus(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	mustCreateTestItem(t, conn, "RAD-0002", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "RAD-0001", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "RAD-0003", enums.ItemStatusLost)

	available, err := repo.ListByStatus(ctx, enums.ItemStatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestRepositoryListsFollowRegistrationOrder(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, serial := range []string{"ZULU-9", "ALPHA-1", "MIKE-5"} {
		item := &models.Item{
			ID:           uuid.New(),
			SerialNumber: serial,
			Name:         "M4 Carbine",
			Category:     "Weapon",
			Location:     "Rack 3",
			Status:       enums.ItemStatusAvailable,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(item).Error)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "ZULU-9", all[0].SerialNumber)
	require.Equal(t, "ALPHA-1", all[1].SerialNumber)
	require.Equal(t, "MIKE-5", all[2].SerialNumber)

	available, err := repo.ListByStatus(ctx, enums.ItemStatusAvailable)
	require.NoError(t, err)
	require.Equal(t, "ZULU-9", available[0].SerialNumber)
}

func TestRepositoryListDueBefore(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	mustCreateTestItem(t, conn, "OPT-0001", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "OPT-0002", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "OPT-0003", enums.ItemStatusAvailable)

	require.NoError(t, repo.SetCheckedOut(ctx, "OPT-0001", "CPL Diaz", types.NewDate(2026, 4, 1)))
	require.NoError(t, repo.SetCheckedOut(ctx, "OPT-0002", "PFC Moss", types.NewDate(2026, 4, 20)))

	overdue, err := repo.ListDueBefore(ctx, types.NewDate(2026, 4, 10))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, "OPT-0001", overdue[0].SerialNumber)

	// stored overdue status still shows up
	require.NoError(t, repo.SetStatus(ctx, "OPT-0002", enums.ItemStatusOverdue))
	overdue, err = repo.ListDueBefore(ctx, types.NewDate(2026, 5, 1))
	require.NoError(t, err)
	require.Len(t, overdue, 2)
}

func TestRepositoryCountByStatus(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	mustCreateTestItem(t, conn, "CNT-0001", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "CNT-0002", enums.ItemStatusAvailable)
	mustCreateTestItem(t, conn, "CNT-0003", enums.ItemStatusMaintenance)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[enums.ItemStatusAvailable])
	require.EqualValues(t, 1, counts[enums.ItemStatusMaintenance])
	require.Zero(t, counts[enums.ItemStatusLost])
}
