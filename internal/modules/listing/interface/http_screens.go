package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
)

const requestTimeout = 15 * time.Second

// ScreenHandler serves the list screens and the seller/storefront actions over HTTP.
type ScreenHandler struct {
	browse         *usecase.BrowseUseCase
	mutate         *usecase.MutateUseCase
	cart           *usecase.CartUseCase
	publish        *usecase.PublishBookUseCase
	maxUploadBytes int64
}

func NewScreenHandler(browse *usecase.BrowseUseCase, mutate *usecase.MutateUseCase, cart *usecase.CartUseCase, publish *usecase.PublishBookUseCase, maxUploadBytes int64) *ScreenHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 2 << 20
	}
	return &ScreenHandler{browse: browse, mutate: mutate, cart: cart, publish: publish, maxUploadBytes: maxUploadBytes}
}

type mutationResponse struct {
	Notice domain.Notice `json:"notice"`
	View   any           `json:"view,omitempty"`
}

type updateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type cartRequest struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

func requestToken(c echo.Context) string {
	return auth.TokenFromRequest(c.Request(), "token")
}

func (h *ScreenHandler) noun(screen string) string {
	def, err := h.browse.Screens().Resolve(screen)
	if err != nil {
		return "items"
	}
	return strings.ToLower(def.Noun) + "s"
}

// Query handles GET /api/screens/:screen.
func (h *ScreenHandler) Query(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	screen := c.Param("screen")
	query := domain.QueryFromValues(c.QueryParams())
	reload, _ := strconv.ParseBool(c.QueryParam("reload"))
	view, err := h.browse.Query(ctx, requestToken(c), screen, query, reload)
	if err != nil {
		return respondError(c, "Failed to fetch "+h.noun(screen), err)
	}
	return c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/screens/:screen/items/:id?confirm=true.
func (h *ScreenHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	screen := c.Param("screen")
	sess, err := h.browse.Authenticate(requestToken(c))
	if err != nil {
		return respondError(c, "Failed to delete", err)
	}
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	notice, err := h.mutate.Delete(ctx, sess, screen, c.Param("id"), confirmed)
	if err != nil {
		return respondNotice(c, notice, err)
	}
	return c.JSON(http.StatusOK, mutationResponse{Notice: notice, View: h.currentView(sess, screen)})
}

// Update handles PATCH /api/screens/:screen/items/:id with {field, value}.
func (h *ScreenHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, "Failed to update", port.Invalid("invalid request body"))
	}
	screen := c.Param("screen")
	sess, err := h.browse.Authenticate(requestToken(c))
	if err != nil {
		return respondError(c, "Failed to update", err)
	}
	notice, err := h.mutate.Update(ctx, sess, screen, c.Param("id"), req.Field, req.Value)
	if err != nil {
		return respondNotice(c, notice, err)
	}
	return c.JSON(http.StatusOK, mutationResponse{Notice: notice, View: h.currentView(sess, screen)})
}

func (h *ScreenHandler) currentView(sess *usecase.Session, screen string) any {
	def, err := h.browse.Screens().Resolve(screen)
	if err != nil {
		return nil
	}
	if open, ok := sess.Screen(def.Name); ok {
		return open.View()
	}
	return nil
}

// AddToCart handles POST /api/cart with {bookId, quantity}.
func (h *ScreenHandler) AddToCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, "Failed to add to cart", port.Invalid("invalid request body"))
	}
	result, err := h.cart.Add(ctx, requestToken(c), req.BookID, req.Quantity)
	if err != nil {
		return respondError(c, "Failed to add to cart", err)
	}
	return c.JSON(http.StatusOK, result)
}

// UploadMedia handles POST /api/media (multipart "file", optional "preset").
func (h *ScreenHandler) UploadMedia(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.browse.Authenticate(requestToken(c))
	if err != nil {
		return respondError(c, "Failed to upload image", err)
	}
	media, err := h.readMedia(c, "file")
	if err != nil {
		return respondError(c, "Failed to upload image", err)
	}
	if media == nil {
		return respondError(c, "Failed to upload image", port.Invalid("image file is required"))
	}
	media.Preset = c.FormValue("preset")
	uploaded, err := h.publish.Upload(ctx, sess.State, *media)
	if err != nil {
		return respondError(c, "Failed to upload image", err)
	}
	return c.JSON(http.StatusCreated, uploaded)
}

// PublishBook handles POST /api/books. JSON bodies carry cover_image as a URL; multipart
// forms may attach the cover as "cover".
func (h *ScreenHandler) PublishBook(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sess, err := h.browse.Authenticate(requestToken(c))
	if err != nil {
		return respondError(c, "Failed to add book", err)
	}

	var input usecase.PublishBookInput
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		input.Listing = books.ListingInput{
			Name:         c.FormValue("name"),
			Author:       c.FormValue("author"),
			Description:  c.FormValue("description"),
			CategoryName: c.FormValue("category_name"),
			Price:        c.FormValue("price"),
			Stock:        c.FormValue("stock"),
			CoverImage:   c.FormValue("cover_image"),
		}
		if input.Cover, err = h.readMedia(c, "cover"); err != nil {
			return respondError(c, "Failed to add book", err)
		}
	} else if err := c.Bind(&input.Listing); err != nil {
		return respondError(c, "Failed to add book", port.Invalid("invalid request body"))
	}

	out, err := h.publish.Execute(ctx, sess.State, input)
	if err != nil {
		return respondError(c, "Failed to add book", err)
	}
	slog.Info("http book published", slog.String("sessionId", sess.ID()), slog.String("name", out.Listing.Name))
	return c.JSON(http.StatusCreated, map[string]any{
		"notice":  domain.Success("Book added successfully"),
		"listing": out.Listing,
		"record":  out.Record,
	})
}

// readMedia returns nil when the form has no such file.
func (h *ScreenHandler) readMedia(c echo.Context, field string) (*port.Media, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, port.Invalid("invalid upload form")
	}
	if header.Size > h.maxUploadBytes {
		return nil, port.Invalid("image must be smaller than %d MB", h.maxUploadBytes>>20)
	}
	file, err := header.Open()
	if err != nil {
		return nil, port.Invalid("unreadable upload")
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, port.Invalid("unreadable upload")
	}
	return &port.Media{Filename: header.Filename, Content: content}, nil
}
