package sync

import (
	"sync"
)

// FlightSet tracks which keys have an operation in flight.
// Keys are spread over N shards by hash so unrelated keys rarely contend on
// the same mutex. Unlike a lock, TryAcquire never blocks: a second caller
// for a busy key is refused instead of queued.
type FlightSet struct {
	shards [32]flightShard
}

type flightShard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewFlightSet creates an empty FlightSet with 32 shards.
func NewFlightSet() *FlightSet {
	f := &FlightSet{}
	for i := range f.shards {
		f.shards[i].keys = make(map[string]struct{})
	}
	return f
}

// TryAcquire marks key as in flight. It returns false if the key is already
// in flight. Empty keys default to shard 0.
func (f *FlightSet) TryAcquire(key string) bool {
	shard := &f.shards[f.shardFor(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, busy := shard.keys[key]; busy {
		return false
	}
	shard.keys[key] = struct{}{}
	return true
}

// Release clears the in-flight mark for key. Releasing an idle key is a no-op.
func (f *FlightSet) Release(key string) {
	shard := &f.shards[f.shardFor(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.keys, key)
}

// InFlight reports whether key is currently in flight.
func (f *FlightSet) InFlight(key string) bool {
	shard := &f.shards[f.shardFor(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	_, busy := shard.keys[key]
	return busy
}

// shardFor returns the shard index for the given key.
func (f *FlightSet) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(f.shards)))
}

// hashString provides a simple hash for shard selection.
// Uses djb2-style hashing for good distribution.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
