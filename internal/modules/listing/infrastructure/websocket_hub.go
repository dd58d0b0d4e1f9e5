package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
)

// Hub fans messages out to websocket clients. A message reaches a client when the client is
// subscribed to its topic and, if the message names a sessionId or screen in its metadata,
// the client belongs to that session and screen.
type Hub struct {
	topics  map[string]map[*Client]struct{}
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[string]*Client),
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	slog.Info("ws client registered", slog.String("connId", c.id), slog.String("sessionId", c.sessionID), slog.String("screen", c.screen))
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
}

// resubscribe subscribes c to a topic it was attached with. Other topics are refused.
func (h *Hub) resubscribe(c *Client, topic string) bool {
	h.mu.Lock()
	_, ok := c.allowed[topic]
	h.mu.Unlock()
	if !ok {
		return false
	}
	h.subscribe(c, topic)
	return true
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
	slog.Debug("ws client unsubscribed", slog.String("connId", c.id), slog.String("topic", topic))
}

// detachClient unsubscribes c and closes it. Close hooks run after the hub lock is released.
func (h *Hub) detachClient(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	_, attached := h.clients[c.id]
	if attached {
		for topic := range c.subscribed {
			if subs, ok := h.topics[topic]; ok {
				delete(subs, c)
				if len(subs) == 0 {
					delete(h.topics, topic)
				}
			}
		}
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	c.close()
	if attached {
		slog.Info("ws client detached", slog.String("connId", c.id), slog.String("sessionId", c.sessionID), slog.String("screen", c.screen))
	}
}

// Clients reports how many connections are attached.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionConnected reports whether any connection of sessionID is still attached.
func (h *Hub) SessionConnected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.sessionID == sessionID {
			return true
		}
	}
	return false
}

func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.String("topic", msg.Topic), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	subs := h.topics[msg.Topic]
	clients := make([]*Client, 0, len(subs))
	for c := range subs {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	targetSession := ""
	targetScreen := ""
	if msg.Metadata != nil {
		targetSession = strings.TrimSpace(msg.Metadata["sessionId"])
		targetScreen = strings.TrimSpace(msg.Metadata["screen"])
	}

	for _, c := range clients {
		if targetSession != "" && c.sessionID != targetSession {
			continue
		}
		if targetScreen != "" && c.screen != targetScreen {
			continue
		}
		c.enqueue(data)
	}
}

// AttachClient registers c and subscribes it to topics. These are the only topics c may
// subscribe to again later.
func (h *Hub) AttachClient(c *Client, topics []string) {
	h.registerClient(c)
	for _, topic := range topics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			continue
		}
		h.mu.Lock()
		c.allowed[trimmed] = struct{}{}
		h.mu.Unlock()
		h.subscribe(c, trimmed)
	}
	slog.Info("ws client attached", slog.String("connId", c.id), slog.String("sessionId", c.sessionID), slog.String("screen", c.screen), slog.Any("topics", topics))
}

var _ port.Broadcaster = (*Hub)(nil)

// Detach removes c from the hub and closes its connection.
func (h *Hub) Detach(c *Client) { h.detachClient(c) }
