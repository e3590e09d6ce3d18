package tracking

import (
	"context"

	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages the append-only tracking ledger. There are no
// update or delete operations on purpose.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.TrackingEvent) error
	ListByShipmentID(ctx context.Context, shipmentID int64) ([]models.TrackingEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tracking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByShipmentID(ctx context.Context, shipmentID int64) ([]models.TrackingEvent, error) {
	var rows []models.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
