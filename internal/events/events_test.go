package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherKeysByProduct(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, nil)

	newStock := 5
	p.Publish(context.Background(), StockEvent{
		ID:        "evt-1",
		Type:      TypeStockUpdate,
		Action:    ActionProductUpdated,
		ProductID: 42,
		NewStock:  &newStock,
		User:      "ops@example.com",
		At:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.True(t, w.closed)

	var decoded StockEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, ActionProductUpdated, decoded.Action)
	require.NotNil(t, decoded.NewStock)
	assert.Equal(t, 5, *decoded.NewStock)
}

func TestKafkaPublisherSwallowsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, nil)

	p.Publish(context.Background(), StockEvent{Action: ActionProductDeleted})
	require.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}

func TestMultiSkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi{a, nil, b}.Publish(context.Background(), StockEvent{Action: ActionProductCreated})

	assert.Equal(t, []string{ActionProductCreated}, a.Actions())
	assert.Equal(t, []string{ActionProductCreated}, b.Actions())
}
