package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/session"
)

// CartResult is the outcome of an add-to-cart action.
type CartResult struct {
	CartCount int           `json:"cartCount"`
	Notice    domain.Notice `json:"notice"`
}

// CartUseCase adds catalog books to the signed-in user's cart.
type CartUseCase struct {
	browse *BrowseUseCase
	cart   port.CartClient
}

func NewCartUseCase(browse *BrowseUseCase, cart port.CartClient) *CartUseCase {
	return &CartUseCase{browse: browse, cart: cart}
}

// Add checks stock against the session's catalog when the book is on screen, then posts the
// item. The session's cart count follows the backend when it reports one.
func (uc *CartUseCase) Add(ctx context.Context, token, bookID string, quantity int) (*CartResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrLoginRequired
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, port.Invalid("book id is required")
	}
	if quantity <= 0 {
		quantity = 1
	}
	sess, err := uc.browse.Authenticate(token)
	if err != nil {
		return nil, err
	}
	if err := checkStock(sess, bookID, quantity); err != nil {
		return nil, err
	}

	count, err := uc.cart.AddToCart(ctx, sess.State.Token(), bookID, quantity)
	if err != nil {
		slog.Warn("cart add failed", slog.String("sessionId", sess.ID()), slog.String("bookId", bookID), slog.Any("error", err))
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	var cart session.CartWriter = sess.State
	if count > 0 {
		cart.SetCartCount(count)
	} else {
		cart.AddToCart(quantity)
	}
	slog.Info("cart add succeeded", slog.String("sessionId", sess.ID()), slog.String("bookId", bookID), slog.Int("quantity", quantity), slog.Int("cartCount", cart.CartCount()))
	return &CartResult{CartCount: cart.CartCount(), Notice: domain.Success("Book added to cart")}, nil
}

func checkStock(sess *Session, bookID string, quantity int) error {
	for _, name := range []string{ScreenCatalog, ScreenBooks} {
		screen, ok := sess.Screen(name)
		if !ok {
			continue
		}
		item, ok := screen.Item(bookID)
		if !ok {
			continue
		}
		book, ok := item.(books.Book)
		if !ok {
			continue
		}
		if !book.InStock() {
			return ErrOutOfStock
		}
		if quantity > book.Stock {
			return port.Invalid("only %d copies of %s left in stock", book.Stock, book.Name)
		}
		return nil
	}
	return nil
}
