package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSpace       OutboxAggregateType = "logistics_space"
	AggregateShipment    OutboxAggregateType = "shipment"
	AggregateTransaction OutboxAggregateType = "transaction"
	AggregateTracking    OutboxAggregateType = "tracking_event"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSpace,
	AggregateShipment,
	AggregateTransaction,
	AggregateTracking,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSpaceListed          OutboxEventType = "space_listed"
	EventSpaceStatusChanged   OutboxEventType = "space_status_changed"
	EventSpaceBooked          OutboxEventType = "space_booked"
	EventShipmentCreated      OutboxEventType = "shipment_created"
	EventShipmentStatusMoved  OutboxEventType = "shipment_status_moved"
	EventTransactionCreated   OutboxEventType = "transaction_created"
	EventTransactionConfirmed OutboxEventType = "transaction_confirmed"
	EventTrackingRecorded     OutboxEventType = "tracking_recorded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSpaceListed,
	EventSpaceStatusChanged,
	EventSpaceBooked,
	EventShipmentCreated,
	EventShipmentStatusMoved,
	EventTransactionCreated,
	EventTransactionConfirmed,
	EventTrackingRecorded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
