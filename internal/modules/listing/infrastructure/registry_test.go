package infrastructure

import (
	"context"
	"slices"
	"testing"

	"bookshelfWs/internal/modules/listing/domain"
)

type recordingTopicHandler struct {
	topic string
	seen  []string
}

func (h *recordingTopicHandler) Topic() string { return h.topic }

func (h *recordingTopicHandler) Handle(_ context.Context, msg *domain.Message) error {
	h.seen = append(h.seen, msg.Topic)
	return nil
}

func TestHandlerRegistryDispatch(t *testing.T) {
	t.Parallel()

	books := &recordingTopicHandler{topic: "bookstore.books.deleted"}
	orders := &recordingTopicHandler{topic: "orders.updated"}
	registry := NewHandlerRegistry()
	registry.Register(books)
	registry.Register(orders)

	topics := registry.Topics()
	slices.Sort(topics)
	if !slices.Equal(topics, []string{"bookstore.books.deleted", "orders.updated"}) {
		t.Fatalf("unexpected topics %v", topics)
	}

	ctx := context.Background()
	_ = registry.Dispatch(ctx, "bookstore.books.deleted", &domain.Message{Topic: "books.deleted"})
	_ = registry.Dispatch(ctx, "other.source", &domain.Message{Topic: "orders.updated"})
	_ = registry.Dispatch(ctx, "other.source", &domain.Message{Topic: "users.created"})

	if !slices.Equal(books.seen, []string{"books.deleted"}) {
		t.Fatalf("books handler saw %v", books.seen)
	}
	if !slices.Equal(orders.seen, []string{"orders.updated"}) {
		t.Fatalf("orders handler saw %v", orders.seen)
	}
}
