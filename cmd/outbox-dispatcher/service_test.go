package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
)

type fakeRepo struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublisher struct {
	topics []string
	err    error
}

type fakeResult struct{ err error }

func (r *fakeResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "msg-id", nil
}

func (p *fakePublisher) factory() publisherFactory {
	return func(topic string) publisher {
		p.topics = append(p.topics, topic)
		return p
	}
}

func (p *fakePublisher) Publish(context.Context, *gcppubsub.Message) publishResult {
	return &fakeResult{err: p.err}
}

func testEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   7,
		Payload:       json.RawMessage(`{"order_id":7}`),
		CreatedAt:     time.Now(),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, factory publisherFactory) *Service {
	t.Helper()

	registry, err := outbox.NewEventRegistry(config.PubSubConfig{
		OrderEventsTopic:   "orders",
		PaymentEventsTopic: "payments",
		BalanceEventsTopic: "balances",
		NotificationTopic:  "notifications",
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Config:           &config.Config{},
		Logger:           logger.New(logger.Options{ServiceName: "dispatcher-test", Level: zerolog.Disabled, Output: io.Discard}),
		Repository:       repo,
		Registry:         registry,
		PublisherFactory: factory,
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	orderEvent := testEvent(enums.EventOrderCreated)
	paymentEvent := testEvent(enums.EventPaymentConfirmed)
	repo := &fakeRepo{pending: []models.OutboxEvent{orderEvent, paymentEvent}}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub.factory())

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, []uuid.UUID{orderEvent.ID, paymentEvent.ID}, repo.published)
	assert.Empty(t, repo.failed)
	assert.Equal(t, []string{"orders", "payments"}, pub.topics)
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub.factory())

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchMarksFailedOnPublishError(t *testing.T) {
	event := testEvent(enums.EventBalanceChanged)
	repo := &fakeRepo{pending: []models.OutboxEvent{event}}
	pub := &fakePublisher{err: errors.New("pubsub unavailable")}

	svc := newTestService(t, repo, pub.factory())

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Empty(t, repo.published)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.failed)
}

func TestProcessBatchMarksFailedOnUnroutableType(t *testing.T) {
	event := testEvent(enums.OutboxEventType("made_up_event"))
	repo := &fakeRepo{pending: []models.OutboxEvent{event}}
	pub := &fakePublisher{}

	svc := newTestService(t, repo, pub.factory())

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Empty(t, pub.topics, "unroutable events never reach a publisher")
	assert.Equal(t, []uuid.UUID{event.ID}, repo.failed)
}

func TestProcessBatchSurfacesFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("connection reset")}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub.factory())

	_, err := svc.processBatch(context.Background())
	assert.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	logg := logger.New(logger.Options{ServiceName: "dispatcher-test", Level: zerolog.Disabled, Output: io.Discard})

	_, err := NewService(ServiceParams{Logger: logg, Repository: repo, PublisherFactory: pub.factory()})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Config: &config.Config{}, Repository: repo, PublisherFactory: pub.factory()})
	assert.Error(t, err)
}
