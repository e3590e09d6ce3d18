package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/internal/spaces"
	"github.com/cargochainlabs/cargochain-backend/internal/tracking"
	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/metrics"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/payloads"
)

// Service runs the booking workflow: a shipment claims a space, a
// transaction settles the shipment, and confirmation cascades the
// status changes atomically.
type Service interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error)
	GetShipment(ctx context.Context, id int64) (*models.Shipment, error)
	ListShipments(ctx context.Context) ([]models.Shipment, error)
	ListShipmentsByUser(ctx context.Context, userID int64) ([]models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id int64, status enums.ShipmentStatus) (*models.Shipment, error)
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactionByShipment(ctx context.Context, shipmentID int64) (*models.Transaction, error)
	ConfirmTransaction(ctx context.Context, id int64, blockchainTxHash string) (*models.Transaction, error)
}

// CreateShipmentInput carries a new booking's attributes.
type CreateShipmentInput struct {
	LogisticsSpaceID   int64
	UserID             int64
	GoodsType          string
	Weight             float64
	Length             float64
	Width              float64
	Height             float64
	AdditionalServices json.RawMessage
}

// CreateTransactionInput carries a pending payment for a shipment.
type CreateTransactionInput struct {
	ShipmentID     int64
	UserID         int64
	Amount         decimal.Decimal
	Currency       string
	PaymentMethod  enums.PaymentMethod
	PaymentDetails json.RawMessage
}

type service struct {
	dbClient     *db.Client
	shipments    ShipmentRepository
	transactions TransactionRepository
	spaceRepo    spaces.Repository
	trackingRepo tracking.Repository
	outbox       *outbox.Service
	metrics      *metrics.BookingMetrics
	now          func() time.Time
}

// ServiceParams bundles the dependencies required to build a booking service.
type ServiceParams struct {
	DB           *db.Client
	Shipments    ShipmentRepository
	Transactions TransactionRepository
	Spaces       spaces.Repository
	Tracking     tracking.Repository
	Outbox       *outbox.Service
	Metrics      *metrics.BookingMetrics
	Now          func() time.Time
}

// NewService constructs a booking service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Shipments == nil {
		return nil, fmt.Errorf("shipment repository is required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transaction repository is required")
	}
	if params.Spaces == nil {
		return nil, fmt.Errorf("space repository is required")
	}
	if params.Tracking == nil {
		return nil, fmt.Errorf("tracking repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		dbClient:     params.DB,
		shipments:    params.Shipments,
		transactions: params.Transactions,
		spaceRepo:    params.Spaces,
		trackingRepo: params.Tracking,
		outbox:       params.Outbox,
		metrics:      params.Metrics,
		now:          params.Now,
	}, nil
}

// CreateShipment books a space. The availability check and the status
// write happen as one conditional update, so two shippers racing for
// the same space cannot both win.
func (s *service) CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	if err := validateCreateShipment(input); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		LogisticsSpaceID:   input.LogisticsSpaceID,
		UserID:             input.UserID,
		GoodsType:          strings.TrimSpace(input.GoodsType),
		Weight:             input.Weight,
		Length:             input.Length,
		Width:              input.Width,
		Height:             input.Height,
		Status:             enums.ShipmentStatusPending,
		AdditionalServices: input.AdditionalServices,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		spaceRepo := s.spaceRepo.WithTx(tx)
		shipmentRepo := s.shipments.WithTx(tx)

		space, err := spaceRepo.GetByID(ctx, input.LogisticsSpaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space")
		}
		claimed, err := spaceRepo.ClaimForBooking(ctx, space.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim space")
		}
		if !claimed {
			s.metrics.IncConflict("shipment")
			return pkgerrors.New(pkgerrors.CodeConflict, "space already booked")
		}

		if err := shipmentRepo.Create(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shipment")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSpaceBooked,
			AggregateType: enums.AggregateSpace,
			AggregateID:   space.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.UserRoleUser.String()},
			Version:       1,
			Data: payloads.SpaceBookedEvent{
				SpaceID:    space.ID,
				ShipmentID: shipment.ID,
				UserID:     input.UserID,
			},
		}); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentCreated,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.UserRoleUser.String()},
			Version:       1,
			Data: payloads.ShipmentCreatedEvent{
				ShipmentID: shipment.ID,
				SpaceID:    space.ID,
				UserID:     input.UserID,
				GoodsType:  shipment.GoodsType,
				Weight:     shipment.Weight,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncShipmentsCreated()
	return shipment, nil
}

func (s *service) GetShipment(ctx context.Context, id int64) (*models.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
	}
	return shipment, nil
}

func (s *service) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	rows, err := s.shipments.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipments")
	}
	return rows, nil
}

func (s *service) ListShipmentsByUser(ctx context.Context, userID int64) ([]models.Shipment, error) {
	rows, err := s.shipments.ListByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user shipments")
	}
	return rows, nil
}

// UpdateShipmentStatus advances a shipment one lifecycle step. Any
// other move is rejected without touching the row.
func (s *service) UpdateShipmentStatus(ctx context.Context, id int64, status enums.ShipmentStatus) (*models.Shipment, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", status))
	}

	var updated *models.Shipment
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.shipments.WithTx(tx)

		shipment, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
		}
		if !shipment.Status.CanTransitionTo(status) {
			s.metrics.IncConflict("shipment_status")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move shipment from %s to %s", shipment.Status, status))
		}

		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipment status")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentStatusMoved,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Version:       1,
			Data: payloads.ShipmentStatusMovedEvent{
				ShipmentID: shipment.ID,
				FromStatus: shipment.Status,
				ToStatus:   status,
			},
		}); err != nil {
			return err
		}

		shipment.Status = status
		updated = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateTransaction attaches a pending payment to a shipment. A second
// transaction for the same shipment is rejected both here and by the
// unique index on shipment_id.
func (s *service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if err := validateCreateTransaction(input); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	txn := &models.Transaction{
		ShipmentID:     input.ShipmentID,
		UserID:         input.UserID,
		Amount:         input.Amount,
		Currency:       currency,
		PaymentMethod:  input.PaymentMethod,
		PaymentDetails: input.PaymentDetails,
		Status:         enums.TransactionStatusPending,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipments.WithTx(tx)
		txnRepo := s.transactions.WithTx(tx)

		shipment, err := shipmentRepo.GetByID(ctx, input.ShipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
		}

		if _, err := txnRepo.GetByShipmentID(ctx, shipment.ID); err == nil {
			s.metrics.IncConflict("transaction")
			return pkgerrors.New(pkgerrors.CodeConflict, "shipment already has a transaction")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup transaction")
		}

		if err := txnRepo.Create(ctx, txn); err != nil {
			if db.IsUniqueViolation(err, "idx_transactions_shipment_id") {
				s.metrics.IncConflict("transaction")
				return pkgerrors.New(pkgerrors.CodeConflict, "shipment already has a transaction")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create transaction")
		}

		if err := shipmentRepo.LinkTransaction(ctx, shipment.ID, txn.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link transaction")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCreated,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: enums.UserRoleUser.String()},
			Version:       1,
			Data: payloads.TransactionCreatedEvent{
				TransactionID: txn.ID,
				ShipmentID:    shipment.ID,
				Amount:        txn.Amount.String(),
				Currency:      txn.Currency,
				PaymentMethod: txn.PaymentMethod,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load transaction")
	}
	return txn, nil
}

func (s *service) GetTransactionByShipment(ctx context.Context, shipmentID int64) (*models.Transaction, error) {
	txn, err := s.transactions.GetByShipmentID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load transaction")
	}
	return txn, nil
}

// ConfirmTransaction settles a pending payment. The transaction update,
// the shipment confirmation, the tracking entry, and the outbox events
// commit or roll back as one unit.
func (s *service) ConfirmTransaction(ctx context.Context, id int64, blockchainTxHash string) (*models.Transaction, error) {
	hash := strings.TrimSpace(blockchainTxHash)
	if hash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "blockchain tx hash is required").
			WithDetails(map[string]string{"blockchain_tx_hash": "required"})
	}

	started := s.now()
	var confirmed *models.Transaction
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txnRepo := s.transactions.WithTx(tx)
		shipmentRepo := s.shipments.WithTx(tx)
		spaceRepo := s.spaceRepo.WithTx(tx)
		trackingRepo := s.trackingRepo.WithTx(tx)

		txn, err := txnRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load transaction")
		}
		if txn.Status != enums.TransactionStatusPending {
			s.metrics.IncConflict("confirm")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("transaction is %s, only pending transactions can be confirmed", txn.Status))
		}

		shipment, err := shipmentRepo.GetByID(ctx, txn.ShipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
		}
		if shipment.Status != enums.ShipmentStatusPending {
			s.metrics.IncConflict("confirm")
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("shipment is %s, expected pending", shipment.Status))
		}

		space, err := spaceRepo.GetByID(ctx, shipment.LogisticsSpaceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load space")
		}

		if err := txnRepo.Complete(ctx, txn.ID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete transaction")
		}
		if err := shipmentRepo.UpdateStatus(ctx, shipment.ID, enums.ShipmentStatusConfirmed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm shipment")
		}

		details, err := json.Marshal(map[string]string{"blockchain_tx_hash": hash})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode tracking details")
		}
		event := &models.TrackingEvent{
			ShipmentID: shipment.ID,
			EventType:  "payment",
			Location:   space.Source,
			Status:     enums.ShipmentStatusConfirmed.String(),
			Message:    "Payment confirmed via blockchain",
			Details:    details,
			Timestamp:  s.now(),
		}
		if err := trackingRepo.Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record tracking event")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentStatusMoved,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Version:       1,
			Data: payloads.ShipmentStatusMovedEvent{
				ShipmentID: shipment.ID,
				FromStatus: enums.ShipmentStatusPending,
				ToStatus:   enums.ShipmentStatusConfirmed,
			},
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionConfirmed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Actor:         &outbox.ActorRef{UserID: txn.UserID, Role: enums.UserRoleUser.String()},
			Version:       1,
			Data: payloads.TransactionConfirmedEvent{
				TransactionID:    txn.ID,
				ShipmentID:       shipment.ID,
				BlockchainTxHash: hash,
			},
		}); err != nil {
			return err
		}

		txn.Status = enums.TransactionStatusCompleted
		txn.BlockchainTxHash = &hash
		confirmed = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransactionsConfirmed()
	s.metrics.ObserveConfirmDuration(s.now().Sub(started))
	return confirmed, nil
}

func validateCreateShipment(input CreateShipmentInput) error {
	details := map[string]string{}
	if input.LogisticsSpaceID <= 0 {
		details["logistics_space_id"] = "required"
	}
	if input.UserID <= 0 {
		details["user_id"] = "required"
	}
	if strings.TrimSpace(input.GoodsType) == "" {
		details["goods_type"] = "required"
	}
	if input.Weight <= 0 {
		details["weight"] = "must be positive"
	}
	if input.Length <= 0 {
		details["length"] = "must be positive"
	}
	if input.Width <= 0 {
		details["width"] = "must be positive"
	}
	if input.Height <= 0 {
		details["height"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipment").WithDetails(details)
	}
	return nil
}

func validateCreateTransaction(input CreateTransactionInput) error {
	details := map[string]string{}
	if input.ShipmentID <= 0 {
		details["shipment_id"] = "required"
	}
	if input.UserID <= 0 {
		details["user_id"] = "required"
	}
	if !input.Amount.IsPositive() {
		details["amount"] = "must be positive"
	}
	if !input.PaymentMethod.IsValid() {
		details["payment_method"] = "invalid"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction").WithDetails(details)
	}
	return nil
}
