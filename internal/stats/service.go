package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	pkgerrors "github.com/cargochainlabs/cargochain-backend/pkg/errors"
)

// Summary is the marketplace snapshot served to developer accounts.
type Summary struct {
	Users           int64           `json:"users"`
	Spaces          int64           `json:"spaces"`
	AvailableSpaces int64           `json:"available_spaces"`
	BookedSpaces    int64           `json:"booked_spaces"`
	Shipments       int64           `json:"shipments"`
	ActiveShipments int64           `json:"active_shipments"`
	Transactions    int64           `json:"transactions"`
	CompletedVolume decimal.Decimal `json:"completed_volume"`
	TrackingEvents  int64           `json:"tracking_events"`
	PendingOutbox   int64           `json:"pending_outbox"`
}

// Service aggregates marketplace counters for the stats endpoint.
type Service interface {
	Summarize(ctx context.Context) (*Summary, error)
}

type service struct {
	dbClient *db.Client
}

// NewService constructs a stats service backed by the given database.
func NewService(dbClient *db.Client) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &service{dbClient: dbClient}, nil
}

func (s *service) Summarize(ctx context.Context) (*Summary, error) {
	conn := s.dbClient.DB().WithContext(ctx)
	summary := &Summary{CompletedVolume: decimal.Zero}

	counts := []struct {
		dest  *int64
		model any
		scope func() (string, []any)
	}{
		{&summary.Users, &models.User{}, nil},
		{&summary.Spaces, &models.LogisticsSpace{}, nil},
		{&summary.AvailableSpaces, &models.LogisticsSpace{}, func() (string, []any) {
			return "status = ?", []any{enums.SpaceStatusAvailable}
		}},
		{&summary.BookedSpaces, &models.LogisticsSpace{}, func() (string, []any) {
			return "status = ?", []any{enums.SpaceStatusBooked}
		}},
		{&summary.Shipments, &models.Shipment{}, nil},
		{&summary.ActiveShipments, &models.Shipment{}, func() (string, []any) {
			return "status <> ?", []any{enums.ShipmentStatusDelivered}
		}},
		{&summary.Transactions, &models.Transaction{}, nil},
		{&summary.TrackingEvents, &models.TrackingEvent{}, nil},
		{&summary.PendingOutbox, &models.OutboxEvent{}, func() (string, []any) {
			return "published_at IS NULL", nil
		}},
	}
	for _, c := range counts {
		query := conn.Model(c.model)
		if c.scope != nil {
			where, args := c.scope()
			query = query.Where(where, args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count rows")
		}
	}

	var completed []models.Transaction
	if err := conn.
		Where("status = ?", enums.TransactionStatusCompleted).
		Find(&completed).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load completed transactions")
	}
	for _, txn := range completed {
		summary.CompletedVolume = summary.CompletedVolume.Add(txn.Amount)
	}

	return summary, nil
}
