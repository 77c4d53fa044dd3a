package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, "reports")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "reports", Event{Type: "report.deleted", UserID: 4, ResourceID: 9}))
	require.NoError(t, b.Publish(ctx, "other", Event{Type: "ignored"}))

	select {
	case raw := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "report.deleted", ev.Type)
		assert.Equal(t, int64(9), ev.ResourceID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestMemoryBroker_CloseEndsSubscriptions(t *testing.T) {
	b := NewMemoryBroker()
	ch, err := b.Subscribe(context.Background(), "reports")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	_, open := <-ch
	assert.False(t, open)
	assert.Error(t, b.Publish(context.Background(), "reports", Event{}))
}
