package booking

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/internal/spaces"
	"github.com/cargochainlabs/cargochain-backend/internal/tracking"
	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.LogisticsSpace{},
		&models.Shipment{},
		&models.Transaction{},
		&models.TrackingEvent{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	service, err := NewService(ServiceParams{
		DB:           db.FromGorm(conn),
		Shipments:    NewShipmentRepository(conn),
		Transactions: NewTransactionRepository(conn),
		Spaces:       spaces.NewRepository(conn),
		Tracking:     tracking.NewRepository(conn),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), nil),
		Now: func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service, conn
}

func seedSpace(t *testing.T, conn *gorm.DB) *models.LogisticsSpace {
	t.Helper()
	space := &models.LogisticsSpace{
		UserID:        2,
		TokenID:       "T-0x8F3E7B4A",
		Source:        "New York",
		Destination:   "Chicago",
		Length:        6,
		Width:         2.4,
		Height:        2.6,
		MaxWeight:     2000,
		VehicleType:   "truck",
		Status:        enums.SpaceStatusAvailable,
		DepartureDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Price:         decimal.NewFromFloat(3.25),
	}
	if err := conn.Create(space).Error; err != nil {
		t.Fatalf("seed space: %v", err)
	}
	return space
}

func sampleShipmentInput(spaceID int64) CreateShipmentInput {
	return CreateShipmentInput{
		LogisticsSpaceID: spaceID,
		UserID:           1,
		GoodsType:        "Electronics",
		Weight:           750,
		Length:           2,
		Width:            1.5,
		Height:           1.2,
	}
}

func TestCreateShipmentBooksSpace(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	shipment, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shipment.Status != enums.ShipmentStatusPending {
		t.Fatalf("new shipments start pending, got %s", shipment.Status)
	}

	var stored models.LogisticsSpace
	if err := conn.First(&stored, space.ID).Error; err != nil {
		t.Fatalf("reload space: %v", err)
	}
	if stored.Status != enums.SpaceStatusBooked {
		t.Fatalf("space should be booked, got %s", stored.Status)
	}

	var outboxCount int64
	if err := conn.Model(&models.OutboxEvent{}).Count(&outboxCount).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	if outboxCount != 2 {
		t.Fatalf("expected space_booked and shipment_created events, got %d", outboxCount)
	}
}

func TestCreateShipmentSecondBookingConflicts(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	if _, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	var count int64
	if err := conn.Model(&models.Shipment{}).Count(&count).Error; err != nil {
		t.Fatalf("count shipments: %v", err)
	}
	if count != 1 {
		t.Fatalf("losing booking must not persist, got %d shipments", count)
	}
}

func TestCreateShipmentUnknownSpace(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateShipment(context.Background(), sampleShipmentInput(999))
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	input := sampleShipmentInput(space.ID)
	input.GoodsType = "  "
	input.Weight = 0

	_, err := service.CreateShipment(context.Background(), input)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %#v", pkgerrors.As(err).Details())
	}
	if details["goods_type"] == "" || details["weight"] == "" {
		t.Fatalf("missing field details: %#v", details)
	}
}

func TestUpdateShipmentStatusRejectsSkipsAndBackwardMoves(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	shipment, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// pending -> in_transit skips confirmed
	if _, err := service.UpdateShipmentStatus(context.Background(), shipment.ID, enums.ShipmentStatusInTransit); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT for skipped stage, got %v", err)
	}

	updated, err := service.UpdateShipmentStatus(context.Background(), shipment.ID, enums.ShipmentStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if updated.Status != enums.ShipmentStatusConfirmed {
		t.Fatalf("got %s", updated.Status)
	}

	if _, err := service.UpdateShipmentStatus(context.Background(), shipment.ID, enums.ShipmentStatusPending); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT for backward move, got %v", err)
	}
}

func TestCreateTransactionAtMostOnePerShipment(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	shipment, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	input := CreateTransactionInput{
		ShipmentID:    shipment.ID,
		UserID:        1,
		Amount:        decimal.NewFromFloat(1380.50),
		PaymentMethod: enums.PaymentMethodMetamask,
	}
	txn, err := service.CreateTransaction(context.Background(), input)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if txn.Status != enums.TransactionStatusPending {
		t.Fatalf("new transactions start pending, got %s", txn.Status)
	}
	if txn.Currency != "USD" {
		t.Fatalf("currency should default to USD, got %s", txn.Currency)
	}

	var stored models.Shipment
	if err := conn.First(&stored, shipment.ID).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if stored.TransactionID == nil || *stored.TransactionID != txn.ID {
		t.Fatal("shipment should link back to its transaction")
	}

	if _, err := service.CreateTransaction(context.Background(), input); !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT on second transaction, got %v", err)
	}
}

func TestConfirmTransactionCascade(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	shipment, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	txn, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		ShipmentID:    shipment.ID,
		UserID:        1,
		Amount:        decimal.NewFromFloat(1380.50),
		PaymentMethod: enums.PaymentMethodMetamask,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	confirmed, err := service.ConfirmTransaction(context.Background(), txn.ID, "0xabc123")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != enums.TransactionStatusCompleted {
		t.Fatalf("got %s", confirmed.Status)
	}
	if confirmed.BlockchainTxHash == nil || *confirmed.BlockchainTxHash != "0xabc123" {
		t.Fatal("hash should be stored on the transaction")
	}

	var storedShipment models.Shipment
	if err := conn.First(&storedShipment, shipment.ID).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if storedShipment.Status != enums.ShipmentStatusConfirmed {
		t.Fatalf("shipment should be confirmed, got %s", storedShipment.Status)
	}

	var events []models.TrackingEvent
	if err := conn.Where("shipment_id = ?", shipment.ID).Find(&events).Error; err != nil {
		t.Fatalf("load tracking: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one payment event, got %d", len(events))
	}
	if events[0].EventType != "payment" || events[0].Location != space.Source {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Message != "Payment confirmed via blockchain" {
		t.Fatalf("unexpected message %q", events[0].Message)
	}
}

func TestConfirmTransactionTerminalIsStateConflict(t *testing.T) {
	service, conn := newTestService(t)
	space := seedSpace(t, conn)

	shipment, err := service.CreateShipment(context.Background(), sampleShipmentInput(space.ID))
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	txn, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		ShipmentID:    shipment.ID,
		UserID:        1,
		Amount:        decimal.NewFromFloat(100),
		PaymentMethod: enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := service.ConfirmTransaction(context.Background(), txn.ID, "0xabc"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := service.ConfirmTransaction(context.Background(), txn.ID, "0xdef"); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT on re-confirm, got %v", err)
	}

	var stored models.Transaction
	if err := conn.First(&stored, txn.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.BlockchainTxHash == nil || *stored.BlockchainTxHash != "0xabc" {
		t.Fatal("original hash must survive a rejected re-confirm")
	}
}

// Concurrency needs a file-backed database: in-memory sqlite cannot
// serialize competing write transactions. A single pooled connection
// keeps the race at the application level where the claim lives.
func newConcurrentTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "booking.db") + "?_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(
		&models.LogisticsSpace{},
		&models.Shipment{},
		&models.Transaction{},
		&models.TrackingEvent{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	service, err := NewService(ServiceParams{
		DB:           db.FromGorm(conn),
		Shipments:    NewShipmentRepository(conn),
		Transactions: NewTransactionRepository(conn),
		Spaces:       spaces.NewRepository(conn),
		Tracking:     tracking.NewRepository(conn),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), nil),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service, conn
}

func TestCreateShipmentConcurrentBookersSingleWinner(t *testing.T) {
	service, conn := newConcurrentTestService(t)
	space := seedSpace(t, conn)

	const bookers = 8
	errs := make([]error, bookers)
	var wg sync.WaitGroup
	wg.Add(bookers)
	for i := 0; i < bookers; i++ {
		go func(i int) {
			defer wg.Done()
			input := sampleShipmentInput(space.ID)
			input.UserID = int64(i + 1)
			_, errs[i] = service.CreateShipment(context.Background(), input)
		}(i)
	}
	wg.Wait()

	var wins int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case pkgerrors.Is(err, pkgerrors.CodeConflict):
		default:
			t.Fatalf("booker %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	var count int64
	if err := conn.Model(&models.Shipment{}).Count(&count).Error; err != nil {
		t.Fatalf("count shipments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one persisted shipment, got %d", count)
	}

	var stored models.LogisticsSpace
	if err := conn.First(&stored, space.ID).Error; err != nil {
		t.Fatalf("reload space: %v", err)
	}
	if stored.Status != enums.SpaceStatusBooked {
		t.Fatalf("space should be booked, got %s", stored.Status)
	}
}

func TestConfirmTransactionRequiresHash(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ConfirmTransaction(context.Background(), 1, "   ")
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestConfirmTransactionUnknownID(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ConfirmTransaction(context.Background(), 42, "0xabc")
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
