package consumer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-hrdata/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCache struct {
	mu       sync.Mutex
	calls    [][]int
	err      error
	failures int
}

func (f *fakeCache) Invalidate(_ context.Context, years []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, years)
	if f.failures > 0 {
		f.failures--
		return errors.New("redis timeout")
	}
	return f.err
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		f.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func TestHandleRecordLifecycle(t *testing.T) {
	t.Run("user event invalidates its hire years", func(t *testing.T) {
		cache := &fakeCache{}
		msg := kafkago.Message{Value: []byte(`{"event_type":"updated","table":"user","record_id":3,"hire_years":[2020,2021]}`)}

		require.NoError(t, consumer.HandleRecordLifecycle(context.Background(), msg, cache))
		assert.Equal(t, [][]int{{2020, 2021}}, cache.calls)
	})

	t.Run("department rename flushes every report", func(t *testing.T) {
		cache := &fakeCache{}
		msg := kafkago.Message{
			Topic: "hrdata.department.lifecycle.v1",
			Value: []byte(`{"event_type":"updated","table":"department","record_id":4}`),
		}

		require.NoError(t, consumer.HandleRecordLifecycle(context.Background(), msg, cache))
		require.Len(t, cache.calls, 1)
		assert.Empty(t, cache.calls[0])
	})
}

func TestConsumeRecordLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"event_type":"upserted","table":"user","hire_years":[2021]}`)},
			{Offset: 2, Value: []byte(`not json`)},
			{Offset: 3, Value: []byte(`{"event_type":"bulk_upserted","table":"user","count":4}`)},
			{Offset: 4, Value: []byte(`{"event_type":"upserted","table":"job","record_id":2}`)},
		},
	}
	cache := &fakeCache{}

	done := make(chan struct{})
	go func() {
		consumer.ConsumeRecordLifecycle(ctx, reader, cache, zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
	require.Len(t, cache.calls, 3)
	assert.Equal(t, []int{2021}, cache.calls[0])
	assert.Empty(t, cache.calls[1])
	assert.Empty(t, cache.calls[2])
}

func TestConsumeRecordLifecycle_RetriesBeforeCommitting(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond, 2*time.Millisecond)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 9, Value: []byte(`{"table":"user","hire_years":[2022]}`)},
			{Offset: 10, Value: []byte(`{"table":"user","hire_years":[2023]}`)},
		},
	}
	cache := &fakeCache{failures: 2}

	consumer.ConsumeRecordLifecycle(ctx, reader, cache, zap.NewNop())

	assert.Equal(t, []int64{9, 10}, reader.committed)
	assert.Equal(t, [][]int{{2022}, {2022}, {2022}, {2023}}, cache.calls)
}

func TestConsumeRecordLifecycle_StopsWithoutCommitWhileCacheIsDown(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond, 5*time.Millisecond)()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs:   []kafkago.Message{{Offset: 9, Value: []byte(`{"table":"user","hire_years":[2022]}`)}},
	}
	cache := &fakeCache{err: errors.New("redis down")}

	consumer.ConsumeRecordLifecycle(ctx, reader, cache, zap.NewNop())

	assert.Empty(t, reader.committed)
	assert.GreaterOrEqual(t, len(cache.calls), 2)
}
