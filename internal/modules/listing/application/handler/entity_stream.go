package handler

import (
	"context"
	"log/slog"
	"strings"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/domain"
)

// EntityStreamHandler forwards broker events for one entity to websocket clients and refreshes
// every open screen that lists the entity. Actions outside allowedActions are dropped.
type EntityStreamHandler struct {
	entity         string
	kafkaTopic     string
	allowedActions map[string]struct{}
	broadcaster    port.Broadcaster
	browse         *usecase.BrowseUseCase
}

func NewEntityStreamHandler(entity, kafkaTopic string, allowedActions []string, broadcaster port.Broadcaster, browse *usecase.BrowseUseCase) *EntityStreamHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &EntityStreamHandler{
		entity:         strings.TrimSpace(entity),
		kafkaTopic:     kafkaTopic,
		allowedActions: actionSet,
		broadcaster:    broadcaster,
		browse:         browse,
	}
}

func (h *EntityStreamHandler) Topic() string { return h.kafkaTopic }

func (h *EntityStreamHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[strings.ToLower(msg.Action)]; !ok {
			return nil
		}
	}
	if msg.Topic == "" && msg.Entity != "" && msg.Action != "" {
		msg.Topic = domain.Topic(msg.Entity, msg.Action)
	}
	if h.broadcaster != nil {
		h.broadcaster.Broadcast(ctx, msg)
	}
	return h.refresh(ctx, msg)
}

func (h *EntityStreamHandler) refresh(ctx context.Context, msg *domain.Message) error {
	if h.browse == nil || strings.EqualFold(msg.Action, domain.ActionSnapshot) {
		return nil
	}
	entity := h.entity
	if entity == "" {
		entity = strings.TrimSpace(msg.Entity)
	}
	if entity == "" {
		return nil
	}
	slog.Info("entity-stream refresh", slog.String("entity", entity), slog.String("action", msg.Action), slog.String("resourceId", msg.ResourceID))
	return h.browse.RefreshEntity(ctx, entity)
}

var _ port.TopicHandler = (*EntityStreamHandler)(nil)
