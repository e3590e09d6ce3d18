package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/payloads"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox/registry"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            1,
				EventType:     enums.EventShipmentCreated,
				AggregateType: enums.AggregateShipment,
				AggregateID:   11,
				Payload:       mustEnvelopePayload(t, "event-one"),
			},
			{
				ID:            2,
				EventType:     enums.EventShipmentCreated,
				AggregateType: enums.AggregateShipment,
				AggregateID:   12,
				Payload:       mustEnvelopePayload(t, "event-two"),
			},
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	resolved := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "booking-topic",
			AggregateType: enums.AggregateShipment,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    "env-1",
			OccurredAt: time.Now(),
		},
		Payload: &payloads.ShipmentCreatedEvent{},
	}
	eventRegistry := &fakeRegistry{resolved: resolved}
	service := newTestService(t, repo, pub, eventRegistry, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestServiceProcessBatchExhaustsOnUnresolvableEvent(t *testing.T) {
	event := models.OutboxEvent{
		ID:            7,
		EventType:     enums.EventTrackingRecorded,
		AggregateType: enums.AggregateTracking,
		AggregateID:   21,
		Payload:       mustEnvelopePayload(t, "unresolvable"),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	eventRegistry := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	service := newTestService(t, repo, &fakePublisher{}, eventRegistry, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.exhausted); got != 1 {
		t.Fatalf("expected exhausted row, got %d", got)
	}
	if repo.exhausted[0] != event.ID {
		t.Fatalf("exhausted row recorded wrong ID: %d", repo.exhausted[0])
	}
	if len(repo.published) != 0 || len(repo.failed) != 0 {
		t.Fatalf("unexpected published/failed rows")
	}
}

func TestServiceProcessBatchExhaustsOnMissingPublisher(t *testing.T) {
	event := models.OutboxEvent{
		ID:            9,
		EventType:     enums.EventSpaceBooked,
		AggregateType: enums.AggregateSpace,
		AggregateID:   31,
		Payload:       mustEnvelopePayload(t, "no-publisher"),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	resolved := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "booking-topic",
			AggregateType: enums.AggregateSpace,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    "env-9",
			OccurredAt: time.Now(),
		},
		Payload: &payloads.SpaceBookedEvent{},
	}
	eventRegistry := &fakeRegistry{resolved: resolved}
	service := newTestService(t, repo, nil, eventRegistry, nil)
	service.publisherFactory = func(string) publisher { return nil }

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.exhausted); got != 1 {
		t.Fatalf("expected exhausted row, got %d", got)
	}
}

func TestServiceProcessBatchMarksFailedOnTransientError(t *testing.T) {
	event := models.OutboxEvent{
		ID:            3,
		EventType:     enums.EventTransactionConfirmed,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   41,
		Payload:       mustEnvelopePayload(t, "transient"),
		AttemptCount:  1,
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
		},
	}
	resolved := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "booking-topic",
			AggregateType: enums.AggregateTransaction,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    "env-3",
			OccurredAt: time.Now(),
		},
		Payload: &payloads.TransactionConfirmedEvent{},
	}
	eventRegistry := &fakeRegistry{resolved: resolved}
	service := newTestService(t, repo, pub, eventRegistry, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("expected failed row, got %d", got)
	}
	if got := len(repo.exhausted); got != 0 {
		t.Fatalf("transient failures increment attempts, got %d exhausted", got)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, resolver registryResolver, outboxCfgOverride *config.OutboxConfig) *Service {
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	cfg := &config.Config{
		Outbox: outboxCfg,
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:           cfg,
		Logger:           logg,
		DB:               &fakeDB{},
		PubSub:           &fakePubSubClient{},
		Repository:       repo,
		Registry:         resolver,
		PublisherFactory: func(_ string) publisher { return pub },
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func mustEnvelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []int64
	failed    []int64
	exhausted []int64
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id int64) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id int64, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkExhaustedTx(tx *gorm.DB, id int64, err error, maxAttempts int) error {
	f.exhausted = append(f.exhausted, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct{}

func (f *fakePubSubClient) Ping(context.Context) error {
	return nil
}

func (f *fakePubSubClient) Publisher(name string) *gcppubsub.Publisher {
	return nil
}

type fakePublisher struct {
	results []publishResult
}

func (f *fakePublisher) Publish(context.Context, *gcppubsub.Message) publishResult {
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "", f.err
}

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Descriptor.AggregateType = event.AggregateType
	return &resolved, f.err
}
