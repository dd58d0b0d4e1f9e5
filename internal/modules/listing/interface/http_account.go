package transport

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookshelfWs/internal/modules/listing/application/usecase"
)

// AccountHandler serves the signed-in user's seller application and the category list.
type AccountHandler struct {
	account *usecase.AccountUseCase
}

func NewAccountHandler(account *usecase.AccountUseCase) *AccountHandler {
	return &AccountHandler{account: account}
}

// SellerRequest handles GET /api/seller-request.
func (h *AccountHandler) SellerRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	result, err := h.account.SellerRequest(ctx, requestToken(c))
	if err != nil {
		return respondError(c, "Failed to load seller request status", err)
	}
	return c.JSON(http.StatusOK, result)
}

// Categories handles GET /api/categories.
func (h *AccountHandler) Categories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	categories, err := h.account.Categories(ctx)
	if err != nil {
		return respondError(c, "Failed to load categories", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}
