package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
	"github.com/cargochainlabs/cargochain-backend/pkg/metrics"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/payloads"
)

// Event types that advance the shipment lifecycle when recorded. Any
// other type is a plain ledger entry.
const (
	EventTypePickup    = "pickup"
	EventTypeDelivered = "delivered"
)

// Service appends checkpoints to the tracking ledger and surfaces a
// shipment's history. Pickup and delivery events also move the
// shipment forward, in the same transaction as the ledger write.
type Service interface {
	AppendEvent(ctx context.Context, input AppendEventInput) (*models.TrackingEvent, error)
	ListEvents(ctx context.Context, shipmentID int64) ([]models.TrackingEvent, error)
}

// AppendEventInput carries a new checkpoint. Location, status and
// timestamp are optional: the status label defaults to the shipment's
// resulting status, the timestamp to the current time.
type AppendEventInput struct {
	ShipmentID int64
	EventType  string
	Location   string
	Latitude   float64
	Longitude  float64
	Status     string
	Message    string
	Details    json.RawMessage
	Timestamp  time.Time
}

type service struct {
	dbClient *db.Client
	repo     Repository
	outbox   *outbox.Service
	metrics  *metrics.BookingMetrics
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a tracking service.
type ServiceParams struct {
	DB      *db.Client
	Repo    Repository
	Outbox  *outbox.Service
	Metrics *metrics.BookingMetrics
	Now     func() time.Time
}

// NewService constructs a tracking service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("tracking repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		dbClient: params.DB,
		repo:     params.Repo,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		now:      params.Now,
	}, nil
}

func (s *service) AppendEvent(ctx context.Context, input AppendEventInput) (*models.TrackingEvent, error) {
	if err := validateAppendEvent(input); err != nil {
		return nil, err
	}

	eventType := strings.TrimSpace(input.EventType)

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	var recorded *models.TrackingEvent
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var shipment models.Shipment
		if err := tx.WithContext(ctx).First(&shipment, input.ShipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipment")
		}

		status := shipment.Status
		if next, moves := statusForEventType(eventType); moves {
			if !shipment.Status.CanTransitionTo(next) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot record %s while shipment is %s", eventType, shipment.Status))
			}
			if err := tx.WithContext(ctx).
				Model(&models.Shipment{}).
				Where("id = ?", shipment.ID).
				Update("status", next).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advance shipment")
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventShipmentStatusMoved,
				AggregateType: enums.AggregateShipment,
				AggregateID:   shipment.ID,
				Version:       1,
				Data: payloads.ShipmentStatusMovedEvent{
					ShipmentID: shipment.ID,
					FromStatus: shipment.Status,
					ToStatus:   next,
				},
			}); err != nil {
				return err
			}
			status = next
		}

		label := strings.TrimSpace(input.Status)
		if label == "" {
			label = status.String()
		}

		event := &models.TrackingEvent{
			ShipmentID: shipment.ID,
			EventType:  eventType,
			Location:   strings.TrimSpace(input.Location),
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
			Status:     label,
			Message:    strings.TrimSpace(input.Message),
			Details:    input.Details,
			Timestamp:  timestamp,
		}
		if err := repo.Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record tracking event")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTrackingRecorded,
			AggregateType: enums.AggregateTracking,
			AggregateID:   event.ID,
			Version:       1,
			Data: payloads.TrackingRecordedEvent{
				TrackingEventID: event.ID,
				ShipmentID:      shipment.ID,
				EventType:       event.EventType,
				Location:        event.Location,
				Timestamp:       event.Timestamp,
			},
		}); err != nil {
			return err
		}

		recorded = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTrackingAppended()
	return recorded, nil
}

func (s *service) ListEvents(ctx context.Context, shipmentID int64) ([]models.TrackingEvent, error) {
	var exists int64
	if err := s.dbClient.DB().WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", shipmentID).
		Count(&exists).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check shipment")
	}
	if exists == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}

	rows, err := s.repo.ListByShipmentID(ctx, shipmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tracking events")
	}
	return rows, nil
}

// statusForEventType maps lifecycle event types to the status a
// shipment should reach when the event is recorded.
func statusForEventType(eventType string) (enums.ShipmentStatus, bool) {
	switch eventType {
	case EventTypePickup:
		return enums.ShipmentStatusInTransit, true
	case EventTypeDelivered:
		return enums.ShipmentStatusDelivered, true
	default:
		return "", false
	}
}

func validateAppendEvent(input AppendEventInput) error {
	details := map[string]string{}
	if input.ShipmentID <= 0 {
		details["shipment_id"] = "required"
	}
	if strings.TrimSpace(input.EventType) == "" {
		details["event_type"] = "required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid tracking event").WithDetails(details)
	}
	return nil
}
