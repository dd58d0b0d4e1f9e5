package usecase

import "errors"

var (
	// ErrPermissionDenied is returned when the session lacks the permission an action requires.
	// It is checked locally, before any request.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrLoginRequired is returned by storefront actions attempted without a token.
	ErrLoginRequired = errors.New("login required")
	// ErrOutOfStock is returned when adding a book with no stock to the cart.
	ErrOutOfStock = errors.New("book is out of stock")
)
