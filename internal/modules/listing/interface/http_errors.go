package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
	"bookshelfWs/internal/shared/httputil"
)

var errorMapper = httputil.NewErrorMapper().
	WithMappings(
		httputil.ErrorMapping{Error: auth.ErrMissingToken, Status: http.StatusUnauthorized, Message: "missing token"},
		httputil.ErrorMapping{Error: usecase.ErrLoginRequired, Status: http.StatusUnauthorized, Message: "login required"},
		httputil.ErrorMapping{Error: auth.ErrInvalidToken, Status: http.StatusUnauthorized, Message: "invalid token"},
		httputil.ErrorMapping{Error: usecase.ErrUnknownScreen, Status: http.StatusNotFound, Message: "unknown screen"},
		httputil.ErrorMapping{Error: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "forbidden"},
		httputil.ErrorMapping{Error: domain.ErrConfirmationRequired, Status: http.StatusPreconditionRequired, Message: "confirmation required"},
		httputil.ErrorMapping{Error: domain.ErrProtectedItem, Status: http.StatusConflict, Message: "item is protected"},
		httputil.ErrorMapping{Error: domain.ErrInFlight, Status: http.StatusConflict, Message: "update already in progress"},
		httputil.ErrorMapping{Error: domain.ErrItemNotFound, Status: http.StatusNotFound, Message: "item not found"},
		httputil.ErrorMapping{Error: usecase.ErrOutOfStock, Status: http.StatusConflict, Message: "book is out of stock"},
		httputil.ErrorMapping{Error: port.ErrValidation, Status: http.StatusBadRequest},
		httputil.ErrorMapping{Error: books.ErrInvalidListing, Status: http.StatusBadRequest, Message: "invalid listing"},
		httputil.ErrorMapping{Error: port.ErrUnsupported, Status: http.StatusMethodNotAllowed, Message: "operation not supported"},
		httputil.ErrorMapping{Error: port.ErrMalformedResponse, Status: http.StatusBadGateway, Message: "invalid response format from server"},
		httputil.ErrorMapping{Error: port.ErrForbidden, Status: http.StatusForbidden, Message: "forbidden by backend"},
		httputil.ErrorMapping{Error: port.ErrNotFound, Status: http.StatusNotFound, Message: "not found"},
		httputil.ErrorMapping{Error: port.ErrRejected, Status: http.StatusUnprocessableEntity, Message: "request rejected"},
	).
	WithDefault(http.StatusBadGateway, "backend unavailable")

type errorResponse struct {
	Error  string        `json:"error"`
	Notice domain.Notice `json:"notice"`
}

// respondError writes {error, notice}. Every failure is a notification, never a crash.
func respondError(c echo.Context, what string, err error) error {
	return respondNotice(c, usecase.FailureNotice(what, err), err)
}

// respondNotice writes an error response around a notice the use case already built.
func respondNotice(c echo.Context, notice domain.Notice, err error) error {
	info := errorMapper.Map(err)
	attrs := []any{
		slog.String("path", c.Path()),
		slog.Int("status", info.Status),
		slog.String("category", notice.Category),
		slog.Any("error", err),
	}
	if info.Status >= http.StatusInternalServerError {
		slog.Error("http request failed", attrs...)
	} else {
		slog.Warn("http request rejected", attrs...)
	}
	return c.JSON(info.Status, errorResponse{Error: info.Message, Notice: notice})
}
