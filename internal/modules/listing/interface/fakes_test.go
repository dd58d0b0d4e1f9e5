package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/application/usecase"
	"bookshelfWs/internal/modules/listing/infrastructure"
	"bookshelfWs/internal/shared/auth"
)

type stubValidator map[string]*auth.Claims

func (v stubValidator) Validate(token string) (*auth.Claims, error) {
	if claims, ok := v[token]; ok {
		copied := *claims
		return &copied, nil
	}
	return nil, auth.ErrInvalidToken
}

type stubBackend struct {
	mu        sync.Mutex
	records   map[string][]map[string]any
	fetchErr  error
	mutateErr error
	calls     []string
	published []books.Listing

	sellerRequest map[string]any
}

func (b *stubBackend) FetchCollection(_ context.Context, _, screen string) ([]map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "fetch "+screen)
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.records[screen], nil
}

func (b *stubBackend) Delete(_ context.Context, _, screen, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fmt.Sprintf("delete %s %s", screen, id))
	return b.mutateErr
}

func (b *stubBackend) Update(_ context.Context, _, screen, id, field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fmt.Sprintf("update %s %s %s=%s", screen, id, field, value))
	return b.mutateErr
}

func (b *stubBackend) Upload(_ context.Context, media port.Media) (*port.UploadedMedia, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "upload "+media.Filename)
	return &port.UploadedMedia{URL: "https://media.example/" + media.Filename, PublicID: "pid"}, nil
}

func (b *stubBackend) Publish(_ context.Context, _ string, listing books.Listing) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "publish "+listing.Name)
	b.published = append(b.published, listing)
	return map[string]any{"id": "b-9", "name": listing.Name}, nil
}

func (b *stubBackend) AddToCart(_ context.Context, _, bookID string, quantity int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fmt.Sprintf("cart %s x%d", bookID, quantity))
	return 0, nil
}

func (b *stubBackend) SellerRequest(_ context.Context, _ string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "seller request")
	if b.sellerRequest == nil {
		return nil, port.ErrNotFound
	}
	return b.sellerRequest, nil
}

func (b *stubBackend) Categories(context.Context) ([]map[string]any, error) {
	return []map[string]any{{"id": float64(2), "name": "Travel"}, {"id": float64(1), "name": "Fiction"}}, nil
}

func (b *stubBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

type server struct {
	echo    *echo.Echo
	backend *stubBackend
	hub     *infrastructure.Hub
	browse  *usecase.BrowseUseCase
}

func newServer(t *testing.T) *server {
	t.Helper()
	validator := stubValidator{
		"admin-token":  {SessionID: "s-admin", Roles: []string{"admin"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}},
		"viewer-token": {SessionID: "s-viewer", Roles: []string{"user"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "3"}},
		"seller-token": {SessionID: "s-seller", Roles: []string{"seller"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "4"}},
	}
	backend := &stubBackend{records: map[string][]map[string]any{
		usecase.ScreenUsers: userRecords(12),
		usecase.ScreenCatalog: {
			{"id": "1", "name": "Atlas", "status": "approved", "stock": 4, "category": map[string]any{"name": "Travel"}},
			{"id": "2", "name": "Empty", "status": "approved", "stock": 0, "category": map[string]any{"name": "Travel"}},
		},
		usecase.ScreenMyOrders: {
			{"order_id": float64(70), "order_status": "pending", "created_at": "2026-01-05T10:00:00Z", "total_price": "12.50"},
			{"order_id": float64(71), "order_status": "delivered", "created_at": "2026-01-02T10:00:00Z", "total_price": "30"},
		},
	}}
	hub := infrastructure.NewHub()
	browse, err := usecase.NewBrowseUseCase(validator, backend, usecase.NewScreenRegistry(nil), hub, usecase.BrowseOptions{MaxSessions: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mutate := usecase.NewMutateUseCase(browse, backend, nil)
	cart := usecase.NewCartUseCase(browse, backend)
	publish := usecase.NewPublishBookUseCase(backend, backend, nil)
	account := usecase.NewAccountUseCase(browse, backend)

	e := echo.New()
	Routes{
		Screens:   NewScreenHandler(browse, mutate, cart, publish, 0),
		Account:   NewAccountHandler(account),
		Websocket: NewScreenWebsocketHandler(hub, browse, mutate, WebsocketOptions{DebounceWait: 10 * time.Millisecond}),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
	}.Register(e)
	return &server{echo: e, backend: backend, hub: hub, browse: browse}
}

func (s *server) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func userRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		role := "user"
		if i%4 == 0 {
			role = "seller"
		}
		records = append(records, map[string]any{
			"id":    float64(i),
			"name":  fmt.Sprintf("user-%02d", i),
			"email": fmt.Sprintf("user%d@books.io", i),
			"role":  role,
		})
	}
	return records
}
