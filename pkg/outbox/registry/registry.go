package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic names.
// Listing and payment events go to the booking topic, ledger appends to
// the tracking topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.BookingTopic == "" {
		return nil, fmt.Errorf("booking topic is required")
	}
	if cfg.TrackingTopic == "" {
		return nil, fmt.Errorf("tracking topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventSpaceListed,
			AggregateType:  enums.AggregateSpace,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.SpaceListedEvent{} },
		},
		{
			EventType:      enums.EventSpaceStatusChanged,
			AggregateType:  enums.AggregateSpace,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.SpaceStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventSpaceBooked,
			AggregateType:  enums.AggregateSpace,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.SpaceBookedEvent{} },
		},
		{
			EventType:      enums.EventShipmentCreated,
			AggregateType:  enums.AggregateShipment,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.ShipmentCreatedEvent{} },
		},
		{
			EventType:      enums.EventShipmentStatusMoved,
			AggregateType:  enums.AggregateShipment,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.ShipmentStatusMovedEvent{} },
		},
		{
			EventType:      enums.EventTransactionCreated,
			AggregateType:  enums.AggregateTransaction,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.TransactionCreatedEvent{} },
		},
		{
			EventType:      enums.EventTransactionConfirmed,
			AggregateType:  enums.AggregateTransaction,
			Topic:          cfg.BookingTopic,
			PayloadFactory: func() interface{} { return &payloads.TransactionConfirmedEvent{} },
		},
		{
			EventType:      enums.EventTrackingRecorded,
			AggregateType:  enums.AggregateTracking,
			Topic:          cfg.TrackingTopic,
			PayloadFactory: func() interface{} { return &payloads.TrackingRecordedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID <= 0 {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
