package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestNewValidatesConfig(t *testing.T) {
	noop := HandlerFunc(func(context.Context, *Message) error { return nil })

	_, err := New(Config{Topic: "audit"}, noop, nil)
	require.Error(t, err)

	_, err = New(Config{Brokers: "localhost:9092"}, noop, nil)
	require.Error(t, err)
}

func TestToMessageCopiesHeaders(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := toMessage(&kgo.Record{
		Topic:     "tickethub.audit",
		Partition: 2,
		Offset:    41,
		Key:       []byte("7"),
		Value:     []byte(`{}`),
		Headers:   []kgo.RecordHeader{{Key: "action", Value: []byte("ticket_issued")}},
		Timestamp: at,
	})

	assert.Equal(t, int32(2), msg.Partition)
	assert.Equal(t, int64(41), msg.Offset)
	assert.Equal(t, "ticket_issued", msg.Headers["action"])
	assert.Equal(t, at, msg.Timestamp)
}

func TestRunStopsOnCancel(t *testing.T) {
	c, err := New(Config{Brokers: "127.0.0.1:1", Topic: "audit"},
		HandlerFunc(func(context.Context, *Message) error { return nil }), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, c.Run(ctx))
}
