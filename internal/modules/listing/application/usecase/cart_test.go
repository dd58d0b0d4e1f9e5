package usecase

import (
	"context"
	"errors"
	"testing"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
)

func TestCartAdd(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.fetcher.set(ScreenCatalog, bookRecords(0, 2), nil)
	cart := &fakeCart{}
	uc := NewCartUseCase(h.browse, cart)

	if _, err := uc.Add(context.Background(), "", "1", 1); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected login required, got %v", err)
	}
	if _, err := uc.Add(context.Background(), "viewer-token", " ", 1); !errors.Is(err, port.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := h.browse.Query(context.Background(), "viewer-token", ScreenCatalog, domain.PagedQuery{}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Add(context.Background(), "viewer-token", "1", 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if _, err := uc.Add(context.Background(), "viewer-token", "2", 3); !errors.Is(err, port.ErrValidation) {
		t.Fatalf("expected quantity above stock to be rejected, got %v", err)
	}
	if len(cart.calls) != 0 {
		t.Fatalf("expected no cart requests, got %v", cart.calls)
	}

	result, err := uc.Add(context.Background(), "viewer-token", "2", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CartCount != 1 || result.Notice.Text != "Book added to cart" {
		t.Fatalf("unexpected result %#v", result)
	}

	cart.count = 5
	result, err = uc.Add(context.Background(), "viewer-token", "2", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CartCount != 5 {
		t.Fatalf("expected backend count to win, got %d", result.CartCount)
	}
}

func TestCartAddFailureKeepsCount(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cart := &fakeCart{err: &port.RejectedError{Status: 400, Message: "book unavailable"}}
	uc := NewCartUseCase(h.browse, cart)

	_, err := uc.Add(context.Background(), "viewer-token", "9", 1)
	if !errors.Is(err, port.ErrRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	sess, _ := h.browse.Session("s-viewer")
	if sess.State.CartCount() != 0 {
		t.Fatalf("expected cart count to stay 0, got %d", sess.State.CartCount())
	}
}
