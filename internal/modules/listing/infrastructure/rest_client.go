package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/shared/normalization"
)

const defaultTimeout = 10 * time.Second

// BackendClient talks to the bookstore REST API. It never retries: every mutation is exactly
// one request.
type BackendClient struct {
	http *resty.Client
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}

// NewBackendClient builds a client for baseURL, e.g. http://localhost:5000/api.
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetTimeout(timeoutOrDefault(timeout)).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &BackendClient{http: client}
}

func (c *BackendClient) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		req.SetAuthToken(trimmed)
	}
	return req
}

// FetchCollection loads the whole collection behind screen.
func (c *BackendClient) FetchCollection(ctx context.Context, token, screen string) ([]map[string]any, error) {
	endpoint, ok := lookupEndpoint(screen)
	if !ok || endpoint.listPath == "" {
		slog.Warn("backend list screen unsupported", slog.String("screen", screen))
		return nil, port.ErrUnsupported
	}
	slog.Debug("backend list fetch start", slog.String("screen", screen), slog.String("path", endpoint.listPath))

	resp, err := c.request(ctx, token).Get(endpoint.listPath)
	if err != nil {
		slog.Error("backend list request error", slog.String("screen", screen), slog.Any("error", err))
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		slog.Warn("backend list decode failed", slog.String("screen", screen), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	records, ok := normalization.UnwrapCollection(payload, endpoint.collectionKeys...)
	if !ok {
		slog.Warn("backend list shape unexpected", slog.String("screen", screen), slog.Any("keys", endpoint.collectionKeys))
		return nil, fmt.Errorf("%w: no %s collection in response", port.ErrMalformedResponse, screen)
	}
	slog.Debug("backend list fetch done", slog.String("screen", screen), slog.Int("items", len(records)))
	return records, nil
}

// Delete removes id from the screen's backend collection.
func (c *BackendClient) Delete(ctx context.Context, token, screen, id string) error {
	endpoint, ok := lookupEndpoint(screen)
	if !ok || endpoint.deletePath == "" {
		return port.ErrUnsupported
	}
	if strings.TrimSpace(id) == "" {
		return port.ErrNotFound
	}
	resp, err := c.request(ctx, token).
		SetPathParam("id", strings.TrimSpace(id)).
		Delete(endpoint.deletePath)
	if err != nil {
		slog.Error("backend delete request error", slog.String("screen", screen), slog.String("id", id), slog.Any("error", err))
		return fmt.Errorf("backend request failed: %w", err)
	}
	return statusError(resp)
}

// Update sends {field: value} to the field's update route.
func (c *BackendClient) Update(ctx context.Context, token, screen, id, field, value string) error {
	endpoint, ok := lookupEndpoint(screen)
	if !ok {
		return port.ErrUnsupported
	}
	patch, ok := endpoint.patch(field)
	if !ok {
		return port.ErrUnsupported
	}
	if strings.TrimSpace(id) == "" {
		return port.ErrNotFound
	}
	resp, err := c.request(ctx, token).
		SetPathParam("id", strings.TrimSpace(id)).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{patch.bodyKey: value}).
		Execute(patchMethod, patch.path)
	if err != nil {
		slog.Error("backend update request error", slog.String("screen", screen), slog.String("id", id), slog.String("field", field), slog.Any("error", err))
		return fmt.Errorf("backend request failed: %w", err)
	}
	return statusError(resp)
}

// Publish posts a seller listing and returns the created record.
func (c *BackendClient) Publish(ctx context.Context, token string, listing books.Listing) (map[string]any, error) {
	resp, err := c.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(listing).
		Post(publishPath)
	if err != nil {
		slog.Error("backend publish request error", slog.String("name", listing.Name), slog.Any("error", err))
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	var payload any
	if len(resp.Body()) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	record, _ := normalization.UnwrapRecord(payload, "book")
	return record, nil
}

// AddToCart posts one cart line. The returned count is the backend's cart size, or 0 when the
// response does not carry one.
func (c *BackendClient) AddToCart(ctx context.Context, token, bookID string, quantity int) (int, error) {
	resp, err := c.request(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"book_id": bookID, "quantity": quantity}).
		Post(cartAddPath)
	if err != nil {
		slog.Error("backend cart request error", slog.String("bookId", bookID), slog.Any("error", err))
		return 0, fmt.Errorf("backend request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return 0, err
	}
	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, nil
	}
	return cartCount(payload), nil
}

// SellerRequest loads the caller's seller application. An empty body means there is none.
func (c *BackendClient) SellerRequest(ctx context.Context, token string) (map[string]any, error) {
	resp, err := c.request(ctx, token).Get(sellerRequestPath)
	if err != nil {
		slog.Error("backend seller request error", slog.Any("error", err))
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(resp.Body()))) == 0 {
		return nil, port.ErrNotFound
	}
	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	if payload == nil {
		return nil, port.ErrNotFound
	}
	record, ok := normalization.UnwrapRecord(payload, "request", "seller_request")
	if !ok {
		return nil, port.ErrNotFound
	}
	return record, nil
}

// Categories loads the public category list.
func (c *BackendClient) Categories(ctx context.Context) ([]map[string]any, error) {
	resp, err := c.request(ctx, "").Get(categoriesPath)
	if err != nil {
		slog.Error("backend categories request error", slog.Any("error", err))
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	records, ok := normalization.UnwrapCollection(payload, "categories")
	if !ok {
		return nil, fmt.Errorf("%w: no categories collection in response", port.ErrMalformedResponse)
	}
	return records, nil
}

func cartCount(payload any) int {
	record, ok := normalization.UnwrapRecord(payload, "cart")
	if !ok {
		return 0
	}
	for _, key := range []string{"cartCount", "cart_count", "count", "total_items"} {
		if n := normalization.AsInt(record[key]); n > 0 {
			return n
		}
	}
	if items := normalization.AsInterfaceSlice(record["items"]); len(items) > 0 {
		total := 0
		for _, entry := range items {
			if q := normalization.AsInt(normalization.AsMap(entry)["quantity"]); q > 0 {
				total += q
			} else {
				total++
			}
		}
		return total
	}
	return 0
}

func statusError(resp *resty.Response) error {
	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return port.ErrForbidden
	case status == http.StatusNotFound:
		return port.ErrNotFound
	case status >= 400 && status < 500:
		return &port.RejectedError{Status: status, Message: errorMessage(resp.Body())}
	default:
		body := strings.TrimSpace(string(resp.Body()))
		if len(body) > 2048 {
			body = body[:2048]
		}
		slog.Error("backend unexpected status", slog.Int("status", status), slog.String("url", resp.Request.URL), slog.String("body", body))
		return fmt.Errorf("unexpected backend response %d", status)
	}
}

func errorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"message", "error", "detail"} {
		if msg := normalization.AsString(payload[key]); msg != "" {
			return msg
		}
		if nested := normalization.AsMap(payload[key]); nested != nil {
			if msg := normalization.AsString(nested["message"]); msg != "" {
				return msg
			}
		}
	}
	return ""
}

var _ port.AccountClient = (*BackendClient)(nil)
