package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id INTEGER NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func TestEmitStoresEnvelope(t *testing.T) {
	conn := setupOutboxTestDB(t)
	svc := NewService(NewRepository(conn), nil)

	event := DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   42,
		Actor:         OperatorActor(7),
		Data:          map[string]any{"from": "waiting_payment", "to": "verification_pending"},
	}

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, event)
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, conn.First(&row).Error)
	require.Equal(t, enums.EventOrderStatusChanged, row.EventType)
	require.Equal(t, int64(42), row.AggregateID)
	require.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.NotNil(t, envelope.Actor)
	require.Equal(t, "operator", envelope.Actor.Role)
}

func TestEmitRequiresTransaction(t *testing.T) {
	conn := setupOutboxTestDB(t)
	svc := NewService(NewRepository(conn), nil)

	err := svc.Emit(context.Background(), nil, DomainEvent{})
	require.Error(t, err)
}

func TestFetchUnpublishedSkipsExhaustedRows(t *testing.T) {
	conn := setupOutboxTestDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < 3; i++ {
			if err := svc.Emit(context.Background(), tx, DomainEvent{
				EventType:     enums.EventBalanceChanged,
				AggregateType: enums.AggregateBalance,
				AggregateID:   int64(i + 1),
				Data:          map[string]any{"balance": i},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublished(10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// park one row beyond the attempt budget
	require.NoError(t, conn.Model(&models.OutboxEvent{}).
		Where("id = ?", rows[0].ID).
		Update("attempt_count", 5).Error)

	rows, err = repo.FetchUnpublished(10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublished(rows[0].ID))
	rows, err = repo.FetchUnpublished(10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRegistryRoutesEvents(t *testing.T) {
	registry, err := NewEventRegistry(config.PubSubConfig{
		OrderEventsTopic:   "orders",
		PaymentEventsTopic: "payments",
		BalanceEventsTopic: "balances",
	})
	require.NoError(t, err)

	topic, err := registry.TopicFor(enums.EventPaymentConfirmed)
	require.NoError(t, err)
	require.Equal(t, "payments", topic)

	_, err = registry.TopicFor("made_up_event")
	require.Error(t, err)
}

func TestRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{OrderEventsTopic: "orders"})
	require.Error(t, err)
}
