package sync

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlightSet_AcquireRelease(t *testing.T) {
	f := NewFlightSet()

	assert.True(t, f.TryAcquire("ticket:1"))
	assert.True(t, f.InFlight("ticket:1"))
	assert.False(t, f.TryAcquire("ticket:1"))

	f.Release("ticket:1")
	assert.False(t, f.InFlight("ticket:1"))
	assert.True(t, f.TryAcquire("ticket:1"))

	// Empty key should work (defaults to shard 0)
	assert.True(t, f.TryAcquire(""))
	f.Release("")
}

func TestFlightSet_DifferentKeysIndependent(t *testing.T) {
	f := NewFlightSet()

	for i := range 100 {
		assert.True(t, f.TryAcquire("ticket:"+strconv.Itoa(i)))
	}
	for i := range 100 {
		assert.True(t, f.InFlight("ticket:"+strconv.Itoa(i)))
	}
}

func TestFlightSet_SameKeyAdmitsOneWinner(t *testing.T) {
	f := NewFlightSet()
	var winners atomic.Int32
	var wg sync.WaitGroup

	for range 100 {
		wg.Go(func() {
			if f.TryAcquire("same-key") {
				winners.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestFlightSet_ShardDistribution(t *testing.T) {
	f := NewFlightSet()

	shards := make(map[int]bool)
	for i := range 100 {
		shards[f.shardFor("ticket:"+strconv.Itoa(i))] = true
	}
	assert.Greater(t, len(shards), 1)
}
