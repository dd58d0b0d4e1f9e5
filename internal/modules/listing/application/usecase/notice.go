package usecase

import (
	"context"
	"errors"
	"fmt"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
)

// Error categories surfaced to the UI.
const (
	CategoryTransport  = "transport"
	CategoryMalformed  = "malformed"
	CategoryValidation = "validation"
	CategoryRejected   = "rejected"
)

type publicMessenger interface {
	PublicMessage() string
}

// Categorize places err in one of the four notification categories.
func Categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, port.ErrMalformedResponse):
		return CategoryMalformed
	case errors.Is(err, port.ErrValidation),
		errors.Is(err, books.ErrInvalidListing),
		errors.Is(err, domain.ErrConfirmationRequired),
		errors.Is(err, domain.ErrProtectedItem),
		errors.Is(err, domain.ErrInFlight),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, port.ErrUnsupported),
		errors.Is(err, ErrUnknownScreen),
		errors.Is(err, ErrLoginRequired),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrOutOfStock),
		errors.Is(err, auth.ErrMissingToken):
		return CategoryValidation
	case errors.Is(err, port.ErrRejected),
		errors.Is(err, port.ErrForbidden),
		errors.Is(err, port.ErrNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return CategoryRejected
	default:
		return CategoryTransport
	}
}

// Describe returns a short user-facing reason for err.
func Describe(err error) string {
	var public publicMessenger
	if errors.As(err, &public) && public.PublicMessage() != "" {
		return public.PublicMessage()
	}
	switch {
	case errors.Is(err, domain.ErrConfirmationRequired):
		return "please confirm the action"
	case errors.Is(err, domain.ErrProtectedItem):
		return "you cannot delete your own account"
	case errors.Is(err, domain.ErrInFlight):
		return "an update for this item is already in progress"
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, port.ErrNotFound):
		return "item not found"
	case errors.Is(err, port.ErrForbidden), errors.Is(err, ErrPermissionDenied):
		return "you do not have permission to do that"
	case errors.Is(err, port.ErrMalformedResponse):
		return "invalid response format from server"
	case errors.Is(err, port.ErrUnsupported):
		return "this action is not available here"
	case errors.Is(err, ErrLoginRequired), errors.Is(err, auth.ErrMissingToken):
		return "you must be logged in"
	case errors.Is(err, auth.ErrInvalidToken):
		return "your session has expired"
	case errors.Is(err, context.DeadlineExceeded):
		return "the server took too long to respond"
	default:
		return err.Error()
	}
}

// FailureNotice turns err into an error notice prefixed with what failed, e.g. "Failed to delete user".
func FailureNotice(what string, err error) domain.Notice {
	category := Categorize(err)
	return domain.Notice{
		Level:    domain.NoticeError,
		Text:     fmt.Sprintf("%s: %s", what, Describe(err)),
		Category: category,
		Retry:    category == CategoryMalformed || category == CategoryTransport,
	}
}
