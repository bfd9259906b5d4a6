package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultChannel  = "survey_payout_notifications"
	broadcastTarget = "*"
)

// Hub tracks live connections per user. With Redis configured every push
// goes through the pub/sub channel, so each instance (this one included)
// delivers to the clients it holds. Without Redis pushes stay local.
type Hub struct {
	clients    map[uuid.UUID][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb     *redis.Client
	channel string
	logger  logger.ILogger
}

type envelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, channel string, log logger.ILogger) *Hub {
	if channel == "" {
		channel = defaultChannel
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		channel:    channel,
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribe(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Debug(logger.ModuleHub, "Client registered", map[string]interface{}{"userId": client.UserID.String()})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// Connected reports how many live connections the user has on this instance.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send pushes a notification to every connection of the user.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	h.push(userID.String(), notification)
}

// Broadcast pushes a notification to every connected user.
func (h *Hub) Broadcast(notification model.Notification) {
	h.push(broadcastTarget, notification)
}

func (h *Hub) push(target string, notification model.Notification) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	if err != nil {
		h.logger.Error(logger.ModuleHub, "Failed to encode notification", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb == nil {
		h.deliver(target, data)
		return
	}

	payload, _ := json.Marshal(envelope{TargetUserID: target, Message: data})
	if err := h.rdb.Publish(context.Background(), h.channel, payload).Err(); err != nil {
		h.logger.Warn(logger.ModuleHub, "Redis publish failed, delivering locally", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
		h.deliver(target, data)
	}
}

// deliver writes to local clients. A client whose buffer is full is dropped.
func (h *Hub) deliver(target string, data []byte) {
	h.mu.RLock()
	var recipients []*Client
	if target == broadcastTarget {
		for _, clients := range h.clients {
			recipients = append(recipients, clients...)
		}
	} else if uid, err := uuid.Parse(target); err == nil {
		recipients = append(recipients, h.clients[uid]...)
	}

	var stale []*Client
	for _, client := range recipients {
		select {
		case client.Send <- data:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn(logger.ModuleHub, "Client send buffer full, dropping connection", map[string]interface{}{
			"userId": client.UserID.String(),
		})
		h.unregister <- client
	}
}

func (h *Hub) subscribe(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn(logger.ModuleHub, "Malformed cluster message", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliver(env.TargetUserID, env.Message)
		}
	}
}
