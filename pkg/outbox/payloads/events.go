package payloads

import (
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
)

// SpaceListedEvent signals a new logistics space listing with its token.
type SpaceListedEvent struct {
	SpaceID     int64  `json:"space_id"`
	TokenID     string `json:"token_id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// SpaceStatusChangedEvent reports an availability change on a listing.
type SpaceStatusChangedEvent struct {
	SpaceID    int64             `json:"space_id"`
	FromStatus enums.SpaceStatus `json:"from_status"`
	ToStatus   enums.SpaceStatus `json:"to_status"`
}

// SpaceBookedEvent reports a listing claimed by a shipment.
type SpaceBookedEvent struct {
	SpaceID    int64 `json:"space_id"`
	ShipmentID int64 `json:"shipment_id"`
	UserID     int64 `json:"user_id"`
}

// ShipmentCreatedEvent signals a new booking.
type ShipmentCreatedEvent struct {
	ShipmentID int64   `json:"shipment_id"`
	SpaceID    int64   `json:"space_id"`
	UserID     int64   `json:"user_id"`
	GoodsType  string  `json:"goods_type"`
	Weight     float64 `json:"weight"`
}

// ShipmentStatusMovedEvent reports a forward step in the shipment lifecycle.
type ShipmentStatusMovedEvent struct {
	ShipmentID int64                `json:"shipment_id"`
	FromStatus enums.ShipmentStatus `json:"from_status"`
	ToStatus   enums.ShipmentStatus `json:"to_status"`
}

// TransactionCreatedEvent signals a pending payment attached to a shipment.
type TransactionCreatedEvent struct {
	TransactionID int64               `json:"transaction_id"`
	ShipmentID    int64               `json:"shipment_id"`
	Amount        string              `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// TransactionConfirmedEvent reports the completed confirmation cascade.
type TransactionConfirmedEvent struct {
	TransactionID    int64  `json:"transaction_id"`
	ShipmentID       int64  `json:"shipment_id"`
	BlockchainTxHash string `json:"blockchain_tx_hash"`
}

// TrackingRecordedEvent reports a new ledger entry for a shipment.
type TrackingRecordedEvent struct {
	TrackingEventID int64     `json:"tracking_event_id"`
	ShipmentID      int64     `json:"shipment_id"`
	EventType       string    `json:"event_type"`
	Location        string    `json:"location"`
	Timestamp       time.Time `json:"timestamp"`
}
