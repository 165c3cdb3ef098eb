package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{Brokers: " , "}, nil)
	require.Error(t, err)
}

func TestNewDoesNotDial(t *testing.T) {
	p, err := New(Config{Brokers: "127.0.0.1:1", Acks: "1"}, nil)
	require.NoError(t, err)
	p.Close(0)

	// Closing twice is harmless and later calls report ErrClosed.
	p.Close(0)
	assert.ErrorIs(t, p.Ping(t.Context()), ErrClosed)
}
