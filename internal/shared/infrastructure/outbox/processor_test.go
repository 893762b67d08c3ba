package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Message), args.Error(1)
}

func (m *mockRepository) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessor_ProcessOnce(t *testing.T) {
	t.Run("publishes pending messages and marks them published", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		proc := NewProcessor(repo, pub, DefaultProcessorConfig(), testLogger())

		msg := &Message{
			ID:         1,
			EventID:    uuid.New(),
			RoutingKey: "tasks.task.completed",
			Payload:    json.RawMessage(`{"task_id":"t1"}`),
			CreatedAt:  time.Now(),
		}

		repo.On("GetUnpublished", mock.Anything, 50).Return([]*Message{msg}, nil)
		pub.On("Publish", mock.Anything, "tasks.task.completed", []byte(`{"task_id":"t1"}`)).Return(nil)
		repo.On("MarkPublished", mock.Anything, int64(1)).Return(nil)

		err := proc.ProcessOnce(context.Background())
		require.NoError(t, err)

		stats := proc.GetStats()
		assert.Equal(t, uint64(1), stats.Published)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("schedules retry on publish failure", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		proc := NewProcessor(repo, pub, DefaultProcessorConfig(), testLogger())

		msg := &Message{ID: 2, EventID: uuid.New(), RoutingKey: "k", RetryCount: 1}

		repo.On("GetUnpublished", mock.Anything, 50).Return([]*Message{msg}, nil)
		pub.On("Publish", mock.Anything, "k", mock.Anything).Return(errors.New("broker down"))
		repo.On("MarkFailed", mock.Anything, int64(2), "broker down", mock.AnythingOfType("time.Time")).Return(nil)

		err := proc.ProcessOnce(context.Background())
		require.NoError(t, err)

		stats := proc.GetStats()
		assert.Equal(t, uint64(1), stats.Failed)
		assert.Equal(t, uint64(0), stats.Published)
		repo.AssertExpectations(t)
	})

	t.Run("dead-letters message after max retries", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		cfg := DefaultProcessorConfig()
		cfg.MaxRetries = 3
		proc := NewProcessor(repo, pub, cfg, testLogger())

		msg := &Message{ID: 3, EventID: uuid.New(), RoutingKey: "k", RetryCount: 3}

		repo.On("GetUnpublished", mock.Anything, 50).Return([]*Message{msg}, nil)
		pub.On("Publish", mock.Anything, "k", mock.Anything).Return(errors.New("broker down"))
		repo.On("MarkDead", mock.Anything, int64(3), "broker down").Return(nil)

		err := proc.ProcessOnce(context.Background())
		require.NoError(t, err)

		stats := proc.GetStats()
		assert.Equal(t, uint64(1), stats.DeadLetter)
		repo.AssertExpectations(t)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(mockRepository)
		pub := new(mockPublisher)
		proc := NewProcessor(repo, pub, DefaultProcessorConfig(), testLogger())

		repo.On("GetUnpublished", mock.Anything, 50).Return(nil, errors.New("db gone"))

		err := proc.ProcessOnce(context.Background())
		assert.Error(t, err)
	})
}

func TestProcessor_Backoff(t *testing.T) {
	cfg := DefaultProcessorConfig()
	cfg.BaseBackoff = time.Second
	cfg.MaxBackoff = 10 * time.Second
	proc := NewProcessor(new(mockRepository), new(mockPublisher), cfg, testLogger())

	assert.Equal(t, time.Second, proc.backoff(0))
	assert.Equal(t, 2*time.Second, proc.backoff(1))
	assert.Equal(t, 8*time.Second, proc.backoff(3))
	assert.Equal(t, 10*time.Second, proc.backoff(8))
}
