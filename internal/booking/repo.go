package booking

import (
	"context"

	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"gorm.io/gorm"
)

// ShipmentRepository manages persistence for shipments.
type ShipmentRepository interface {
	WithTx(tx *gorm.DB) ShipmentRepository
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, id int64) (*models.Shipment, error)
	List(ctx context.Context) ([]models.Shipment, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Shipment, error)
	ListBySpaceID(ctx context.Context, spaceID int64) ([]models.Shipment, error)
	UpdateStatus(ctx context.Context, id int64, status enums.ShipmentStatus) error
	LinkTransaction(ctx context.Context, id, transactionID int64) error
}

type shipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository returns a shipment repository bound to the provided database.
func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) WithTx(tx *gorm.DB) ShipmentRepository {
	if tx == nil {
		return r
	}
	return &shipmentRepository{db: tx}
}

func (r *shipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	var rows []models.Shipment
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shipmentRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Shipment, error) {
	var rows []models.Shipment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shipmentRepository) ListBySpaceID(ctx context.Context, spaceID int64) ([]models.Shipment, error) {
	var rows []models.Shipment
	if err := r.db.WithContext(ctx).
		Where("logistics_space_id = ?", spaceID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shipmentRepository) UpdateStatus(ctx context.Context, id int64, status enums.ShipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *shipmentRepository) LinkTransaction(ctx context.Context, id, transactionID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("transaction_id", transactionID).Error
}

// TransactionRepository manages persistence for booking payments.
type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	GetByShipmentID(ctx context.Context, shipmentID int64) (*models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	Complete(ctx context.Context, id int64, blockchainTxHash string) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a transaction repository bound to the provided database.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	if tx == nil {
		return r
	}
	return &transactionRepository{db: tx}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) GetByShipmentID(ctx context.Context, shipmentID int64) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *transactionRepository) Complete(ctx context.Context, id int64, blockchainTxHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":             enums.TransactionStatusCompleted,
			"blockchain_tx_hash": blockchainTxHash,
		}).Error
}
