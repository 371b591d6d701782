package sse

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/logger"
)

type SSEEvent string

const (
	SSEEventPlanCreated     SSEEvent = "PlanCreated"
	SSEEventPlanDeleted     SSEEvent = "PlanDeleted"
	SSEEventPlanDayUpdated  SSEEvent = "PlanDayUpdated"
	SSEEventUserNameChanged SSEEvent = "UserNameChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every authenticated stream is subscribed to by
// default.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

// Broadcaster is what services see; the hub implements it directly and the
// Redis bus wraps it for multi-instance fanout.
type Broadcaster interface {
	Broadcast(msg SSEMessage)
}

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
}

type SSEHub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
	clientsByUser map[uuid.UUID]map[*SSEClient]bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
		clientsByUser: make(map[uuid.UUID]map[*SSEClient]bool),
	}
}

// NewSSEClient registers a client already subscribed to its user channel.
func (hub *SSEHub) NewSSEClient(userID uuid.UUID) *SSEClient {
	client := &SSEClient{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, 16),
	}

	hub.mu.Lock()
	clients, ok := hub.clientsByUser[userID]
	if !ok {
		clients = make(map[*SSEClient]bool)
		hub.clientsByUser[userID] = clients
	}
	clients[client] = true
	hub.mu.Unlock()

	hub.AddChannel(client, UserChannel(userID))
	return client
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	hub.log.Debug("SSE client subscribed", "clientID", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(client.Channels, channel)
	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
	hub.log.Debug("SSE client unsubscribed", "clientID", client.ID, "channel", channel)
}

// AddUserChannel subscribes every live stream of a user; the subscribe
// endpoint has no handle on the streaming connection itself.
func (hub *SSEHub) AddUserChannel(userID uuid.UUID, channel string) {
	hub.mu.RLock()
	clients := make([]*SSEClient, 0, len(hub.clientsByUser[userID]))
	for c := range hub.clientsByUser[userID] {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()
	for _, c := range clients {
		hub.AddChannel(c, channel)
	}
}

func (hub *SSEHub) RemoveUserChannel(userID uuid.UUID, channel string) {
	hub.mu.RLock()
	clients := make([]*SSEClient, 0, len(hub.clientsByUser[userID]))
	for c := range hub.clientsByUser[userID] {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()
	for _, c := range clients {
		hub.RemoveChannel(c, channel)
	}
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		if subMap, ok := hub.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)

	if clients, ok := hub.clientsByUser[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(hub.clientsByUser, client.UserID)
		}
	}
	hub.log.Debug("SSE client removed", "clientID", client.ID)
}

func (hub *SSEHub) Broadcast(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for client := range hub.subscriptions[msg.Channel] {
		select {
		case client.Outbound <- msg:
		default:
			// slow consumer: drop rather than block the broadcaster
			hub.log.Warn("SSE outbound full, dropping message", "clientID", client.ID, "channel", msg.Channel)
		}
	}
}
