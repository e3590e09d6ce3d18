package booking

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
)

func setupBookingRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Shipment{}, &models.Transaction{}))
	return conn
}

func seedShipment(t *testing.T, conn *gorm.DB, spaceID, userID int64) *models.Shipment {
	t.Helper()

	shipment := &models.Shipment{
		LogisticsSpaceID: spaceID,
		UserID:           userID,
		GoodsType:        "Electronics",
		Weight:           750,
		Length:           2,
		Width:            1.5,
		Height:           1.2,
		Status:           enums.ShipmentStatusPending,
	}
	require.NoError(t, conn.Create(shipment).Error)
	return shipment
}

func TestShipmentRepositoryListByUserAndSpace(t *testing.T) {
	conn := setupBookingRepoDB(t)
	repo := NewShipmentRepository(conn)
	ctx := context.Background()

	first := seedShipment(t, conn, 1, 10)
	second := seedShipment(t, conn, 2, 10)
	seedShipment(t, conn, 1, 20)

	byUser, err := repo.ListByUserID(ctx, 10)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, first.ID, byUser[0].ID)
	assert.Equal(t, second.ID, byUser[1].ID)

	bySpace, err := repo.ListBySpaceID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bySpace, 2)
	for _, row := range bySpace {
		assert.Equal(t, int64(1), row.LogisticsSpaceID)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestShipmentRepositoryUpdateStatusAndLinkTransaction(t *testing.T) {
	conn := setupBookingRepoDB(t)
	repo := NewShipmentRepository(conn)
	ctx := context.Background()

	shipment := seedShipment(t, conn, 1, 10)

	require.NoError(t, repo.UpdateStatus(ctx, shipment.ID, enums.ShipmentStatusConfirmed))
	require.NoError(t, repo.LinkTransaction(ctx, shipment.ID, 42))

	got, err := repo.GetByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusConfirmed, got.Status)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, int64(42), *got.TransactionID)
}

func TestTransactionRepositoryUniquePerShipment(t *testing.T) {
	conn := setupBookingRepoDB(t)
	repo := NewTransactionRepository(conn)
	ctx := context.Background()

	shipment := seedShipment(t, conn, 1, 10)

	txn := &models.Transaction{
		ShipmentID:    shipment.ID,
		UserID:        10,
		Amount:        decimal.RequireFromString("1380.50"),
		Currency:      "USD",
		PaymentMethod: enums.PaymentMethodMetamask,
		Status:        enums.TransactionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, txn))

	dup := &models.Transaction{
		ShipmentID:    shipment.ID,
		UserID:        10,
		Amount:        decimal.RequireFromString("99.00"),
		Currency:      "USD",
		PaymentMethod: enums.PaymentMethodUPI,
		Status:        enums.TransactionStatusPending,
	}
	assert.Error(t, repo.Create(ctx, dup))

	got, err := repo.GetByShipmentID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
}

func TestTransactionRepositoryComplete(t *testing.T) {
	conn := setupBookingRepoDB(t)
	repo := NewTransactionRepository(conn)
	ctx := context.Background()

	shipment := seedShipment(t, conn, 1, 10)
	txn := &models.Transaction{
		ShipmentID:    shipment.ID,
		UserID:        10,
		Amount:        decimal.RequireFromString("250.00"),
		Currency:      "USD",
		PaymentMethod: enums.PaymentMethodMetamask,
		Status:        enums.TransactionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, txn))

	require.NoError(t, repo.Complete(ctx, txn.ID, "0x4a7d9e2b8c1f6a3d"))

	got, err := repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, got.Status)
	require.NotNil(t, got.BlockchainTxHash)
	assert.Equal(t, "0x4a7d9e2b8c1f6a3d", *got.BlockchainTxHash)
}
