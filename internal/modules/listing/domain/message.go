package domain

import (
	"maps"
	"strings"
	"time"
)

const (
	SystemEntity = "system"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionView      = "view"
	ActionNotice    = "notice"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionSnapshot  = "snapshot"
)

// Message is the envelope pushed to websocket clients and decoded from broker events.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Topic returns entity.action, or "" when either part is blank.
func Topic(entity, action string) string {
	entity = strings.TrimSpace(entity)
	action = strings.TrimSpace(action)
	if entity == "" || action == "" {
		return ""
	}
	return entity + "." + action
}

// NewMessage builds a message with its canonical topic. Blank metadata entries are dropped.
func NewMessage(entity, action, resourceID string, metadata map[string]string, data any, at time.Time) *Message {
	entity = strings.TrimSpace(entity)
	action = strings.TrimSpace(action)
	return &Message{
		Topic:      Topic(entity, action),
		Entity:     entity,
		Action:     action,
		ResourceID: strings.TrimSpace(resourceID),
		Metadata:   compactMetadata(metadata),
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// NoticeLevel classifies a transient user notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient, non-blocking notification shown by the UI.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	Text     string      `json:"message"`
	Category string      `json:"category,omitempty"`
	// Retry is set when the screen cannot render until the fetch is retried.
	Retry bool `json:"retry,omitempty"`
}

// Success builds a success notice.
func Success(text string) Notice {
	return Notice{Level: NoticeSuccess, Text: text}
}

// NoticeMessage wraps a notice for a screen. Error notices use the system.error topic.
func NoticeMessage(screen string, notice Notice, metadata map[string]string, at time.Time) *Message {
	meta := maps.Clone(metadata)
	if meta == nil {
		meta = map[string]string{}
	}
	meta["screen"] = screen
	if notice.Level == NoticeError {
		return NewMessage(SystemEntity, ActionError, "", meta, notice, at)
	}
	return NewMessage(screen, ActionNotice, "", meta, notice, at)
}

func compactMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for key, value := range metadata {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
