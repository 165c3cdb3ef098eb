package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "tickethub/pkg/platform/audit"
)

func TestInMemoryStore_ListRecentNewestFirst(t *testing.T) {
	store := NewInMemoryStoreWithCapacity(3)
	ctx := context.Background()

	for _, action := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Append(ctx, audit.Event{Action: action}))
	}

	events, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "d", events[0].Action)
	assert.Equal(t, "c", events[1].Action)
	assert.Equal(t, "b", events[2].Action)

	events, err = store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "d", events[0].Action)
}

func TestInMemoryStore_Empty(t *testing.T) {
	events, err := NewInMemoryStore().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
