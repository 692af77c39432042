package ws

import (
	"context"
	"testing"

	"fyndak-auction-service/internal/adapters/memory"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestListWindow(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]interface{}
		wantLimit int
		wantPage  int
	}{
		{
			name:      "empty payload uses defaults",
			data:      map[string]interface{}{},
			wantLimit: 10,
			wantPage:  1,
		},
		{
			name:      "zero limit falls back to default",
			data:      map[string]interface{}{"limit": 0.0},
			wantLimit: 10,
			wantPage:  1,
		},
		{
			name:      "negative limit falls back to default",
			data:      map[string]interface{}{"limit": -5.0},
			wantLimit: 10,
			wantPage:  1,
		},
		{
			name:      "negative offset falls back to the first page",
			data:      map[string]interface{}{"limit": 5.0, "offset": -10.0},
			wantLimit: 5,
			wantPage:  1,
		},
		{
			name:      "offset converts to page",
			data:      map[string]interface{}{"limit": 5.0, "offset": 10.0},
			wantLimit: 5,
			wantPage:  3,
		},
		{
			name:      "partial offset stays on its page",
			data:      map[string]interface{}{"limit": 10.0, "offset": 7.0},
			wantLimit: 10,
			wantPage:  1,
		},
		{
			name:      "non-numeric values use defaults",
			data:      map[string]interface{}{"limit": "ten", "offset": "zero"},
			wantLimit: 10,
			wantPage:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, page := listWindow(tt.data)
			require.Equal(t, tt.wantLimit, limit)
			require.Equal(t, tt.wantPage, page)
		})
	}
}

func TestEventChannelLifecycle(t *testing.T) {
	ctx := context.Background()
	handler := NewHandler(WsHandlerParams{
		Broadcaster: memory.NewBroadcaster(),
		Logger:      zerolog.Nop(),
	})

	clientID := uuid.New().String()
	productID := uuid.New()

	eventChan := handler.createEventChannel(clientID)
	require.NotNil(t, eventChan)

	// createEventChannel is idempotent per client
	require.Equal(t, eventChan, handler.createEventChannel(clientID))

	require.NoError(t, handler.broadcaster.Subscribe(ctx, productID, clientID, eventChan))
	require.NoError(t, handler.broadcaster.Unsubscribe(ctx, productID, clientID))

	// Dropping the last subscription must not close the channel: the handler
	// owns it until the client disconnects, and a later subscribe reuses it
	eventChan <- outbound.Event{Type: outbound.EventTypeBidPlaced, ProductID: productID}
	evt := <-eventChan
	require.Equal(t, outbound.EventTypeBidPlaced, evt.Type)

	require.NotPanics(t, func() {
		handler.removeEventChannel(clientID)
	})
	_, open := <-eventChan
	require.False(t, open)

	// Removing again is a no-op rather than a double close
	require.NotPanics(t, func() {
		handler.removeEventChannel(clientID)
	})
}
