package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

func TestDispatchOnce_PublishesInOrder(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, Entry{TableName: "customers", RecordID: "1", Action: ActionCreate})
	require.NoError(t, err)
	second, err := svc.Create(ctx, Entry{TableName: "customers", RecordID: "1", Action: ActionUpdate})
	require.NoError(t, err)

	pub := new(mockPublisher)
	var keys []string
	pub.On("Publish", mock.Anything, "test.audit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.String(2)) }).
		Return(nil)

	d := NewDispatcher(NewRepository(db), pub, zap.NewNop(), time.Second, 10)
	n, err := d.DispatchOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{RecordID(first), RecordID(second)}, keys)

	var pending int64
	db.Model(&OutboxMessage{}).Where("dispatched_at IS NULL").Count(&pending)
	assert.Zero(t, pending)

	n, err = d.DispatchOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestDispatchOnce_FailureStopsBatchAndCountsAttempt(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Entry{TableName: "orders", RecordID: "1", Action: ActionCreate})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Entry{TableName: "orders", RecordID: "2", Action: ActionCreate})
	require.NoError(t, err)

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	d := NewDispatcher(NewRepository(db), pub, zap.NewNop(), time.Second, 10)
	n, err := d.DispatchOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	pub.AssertNumberOfCalls(t, "Publish", 1)

	var msgs []OutboxMessage
	require.NoError(t, db.Order("id").Find(&msgs).Error)
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, msgs[0].Attempts)
	assert.Equal(t, "broker down", msgs[0].LastError)
	assert.Equal(t, 0, msgs[1].Attempts)
	assert.Nil(t, msgs[0].DispatchedAt)
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	_, db := setupService(t)
	pub := new(mockPublisher)
	d := NewDispatcher(NewRepository(db), pub, zap.NewNop(), 10*time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
