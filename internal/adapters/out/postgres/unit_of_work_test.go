package postgres_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	postgres_adapter "deliverytracker/internal/adapters/out/postgres"
	"deliverytracker/internal/adapters/out/postgres/deliveryrepo"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteUnitOfWork(t *testing.T, out *bytes.Buffer) *postgres_adapter.GormUnitOfWork {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "uow.db")), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&deliveryrepo.DeliveryDTO{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	log := logger.New(logger.Options{Level: zerolog.DebugLevel, Output: out})
	uow, ok := postgres_adapter.NewGormUnitOfWorkFactory(db).WithLogger(log).Create().(*postgres_adapter.GormUnitOfWork)
	require.True(t, ok)
	return uow
}

func pendingDelivery(t *testing.T, number string) *delivery.Delivery {
	t.Helper()

	inv, err := delivery.NewInvoice(
		number, "Padaria Central", kernel.TaxID{},
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("80.00"), "",
	)
	require.NoError(t, err)
	d, err := delivery.NewDelivery(kernel.NewUUID(), inv)
	require.NoError(t, err)
	return d
}

func TestGormUnitOfWork_CommitLogsWrittenAggregates(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	uow := newSQLiteUnitOfWork(t, &out)
	first, second := pendingDelivery(t, "101"), pendingDelivery(t, "102")

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.DeliveryRepository().Add(ctx, first))
	require.NoError(t, uow.DeliveryRepository().Add(ctx, second))
	assert.Equal(t, []kernel.UUID{first.ID(), second.ID()}, uow.TrackedIDs())

	require.NoError(t, uow.Commit(ctx))

	assert.Empty(t, uow.TrackedIDs())
	assert.Contains(t, out.String(), "unit of work committed")
	assert.Contains(t, out.String(), first.ID().String())
	assert.Contains(t, out.String(), second.ID().String())
}

func TestGormUnitOfWork_RollbackForgetsAggregates(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	uow := newSQLiteUnitOfWork(t, &out)

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.DeliveryRepository().Add(ctx, pendingDelivery(t, "103")))
	require.Len(t, uow.TrackedIDs(), 1)

	require.NoError(t, uow.Rollback(ctx))

	assert.Empty(t, uow.TrackedIDs())
	assert.NotContains(t, out.String(), "unit of work committed")
}
