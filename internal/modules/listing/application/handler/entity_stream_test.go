package handler

import (
	"context"
	"sync"
	"testing"

	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
)

type stubValidator struct{}

func (stubValidator) Validate(token string) (*auth.Claims, error) {
	if token != "admin-token" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{SessionID: "s-1", Roles: []string{"admin"}}, nil
}

type countingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) FetchCollection(context.Context, string, string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return []map[string]any{{"id": "1", "name": "Dune", "status": "approved", "stock": 3}}, nil
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	topics []string
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, msg.Topic)
}

func TestEntityStreamHandlerRefreshesOpenScreens(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{}
	broadcaster := &recordingBroadcaster{}
	browse, err := usecase.NewBrowseUseCase(stubValidator{}, fetcher, usecase.NewScreenRegistry(nil), broadcaster, usecase.BrowseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := browse.Query(context.Background(), "admin-token", usecase.ScreenBooks, domain.PagedQuery{}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := NewEntityStreamHandler("books", "bookshelf.books", []string{"created", "Deleted"}, broadcaster, browse)
	if h.Topic() != "bookshelf.books" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}

	if err := h.Handle(context.Background(), &domain.Message{Entity: "books", Action: "viewed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.count() != 1 || len(broadcaster.topics) != 0 {
		t.Fatalf("filtered action must be ignored, fetches=%d topics=%v", fetcher.count(), broadcaster.topics)
	}

	if err := h.Handle(context.Background(), &domain.Message{Entity: "books", Action: "deleted", ResourceID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.count() != 2 {
		t.Fatalf("expected a refetch, got %d fetches", fetcher.count())
	}
	if len(broadcaster.topics) != 2 || broadcaster.topics[0] != "books.deleted" || broadcaster.topics[1] != "books.view" {
		t.Fatalf("unexpected broadcasts %v", broadcaster.topics)
	}
}
