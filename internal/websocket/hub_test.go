package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, "", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func attach(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.Connected(userID) > 0 }, time.Second, time.Millisecond)
	return c
}

func TestHubSendReachesEveryDeviceOfTheUser(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	phone := attach(t, hub, userID, 4)
	laptop := attach(t, hub, userID, 4)
	other := attach(t, hub, uuid.New(), 4)

	hub.Send(userID, model.Notification{ID: uuid.New(), UserID: userID, Title: "Withdrawal paid"})

	for _, c := range []*Client{phone, laptop} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string             `json:"type"`
				Data model.Notification `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, "Withdrawal paid", msg.Data.Title)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHubBroadcast(t *testing.T) {
	hub := startHub(t)
	a := attach(t, hub, uuid.New(), 1)
	b := attach(t, hub, uuid.New(), 1)

	hub.Broadcast(model.Notification{Title: "Maintenance"})

	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 1)
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	attach(t, hub, userID, 1)

	hub.Send(userID, model.Notification{Title: "one"})
	hub.Send(userID, model.Notification{Title: "two"})

	assert.Eventually(t, func() bool { return hub.Connected(userID) == 0 }, time.Second, time.Millisecond)
}
