package transport

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"bookshelfWs/internal/modules/listing/domain"
)

type pageBody struct {
	Items []struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Total      int               `json:"total"`
	Criteria   map[string]string `json:"criteria"`
}

type failureBody struct {
	Error  string        `json:"error"`
	Notice domain.Notice `json:"notice"`
}

func authorized(method, target, token string, body *strings.Reader) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestQueryScreenPagesAndFilters(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodGet, "/api/screens/users?page=2", "admin-token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body pageBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Page != 2 || body.TotalPages != 2 || body.Total != 12 || len(body.Items) != 2 {
		t.Fatalf("unexpected page %+v", body)
	}

	rec = srv.do(authorized(http.MethodGet, "/api/screens/users?role=seller&page=9", "admin-token", nil))
	body = pageBody{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 3 || body.Page != 1 {
		t.Fatalf("expected 3 sellers clamped to page 1, got %+v", body)
	}
	for _, item := range body.Items {
		if item.Role != "seller" {
			t.Fatalf("filter leaked role %q", item.Role)
		}
	}
	if got := srv.backend.callLog(); !slices.Equal(got, []string{"fetch users"}) {
		t.Fatalf("expected a single fetch, got %v", got)
	}
}

func TestQueryScreenErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		target string
		token  string
		status int
	}{
		{name: "missing token", target: "/api/screens/users", status: http.StatusUnauthorized},
		{name: "invalid token", target: "/api/screens/users", token: "nope", status: http.StatusUnauthorized},
		{name: "unknown screen", target: "/api/screens/wishlists", token: "admin-token", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t)
			rec := srv.do(authorized(http.MethodGet, tc.target, tc.token, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var body failureBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Notice.Level != domain.NoticeError || body.Error == "" {
				t.Fatalf("expected an error notice, got %+v", body)
			}
			if len(srv.backend.callLog()) != 0 {
				t.Fatalf("expected no backend calls, got %v", srv.backend.callLog())
			}
		})
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodGet, "/api/screens/catalog", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body pageBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 2 {
		t.Fatalf("expected both approved books, got %+v", body)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodDelete, "/api/screens/users/items/5", "admin-token", nil))
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, call := range srv.backend.callLog() {
		if strings.HasPrefix(call, "delete") {
			t.Fatalf("unconfirmed delete reached the backend: %v", srv.backend.callLog())
		}
	}

	rec = srv.do(authorized(http.MethodDelete, "/api/screens/users/items/5?confirm=true", "admin-token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Notice domain.Notice `json:"notice"`
		View   pageBody      `json:"view"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Notice.Text != "User #5 deleted successfully" || body.View.Total != 11 {
		t.Fatalf("unexpected response %+v", body)
	}
}

func TestDeleteOwnAccountIsProtected(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodDelete, "/api/screens/users/items/1?confirm=true", "admin-token", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var body failureBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.Notice.Text, "you cannot delete your own account") {
		t.Fatalf("unexpected notice %+v", body.Notice)
	}
}

func TestUpdateRole(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodPatch, "/api/screens/users/items/2", "admin-token", strings.NewReader(`{"field":"role","value":"seller"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !slices.Contains(srv.backend.callLog(), "update users 2 role=seller") {
		t.Fatalf("expected role update call, got %v", srv.backend.callLog())
	}

	rec = srv.do(authorized(http.MethodPatch, "/api/screens/users/items/2", "viewer-token", strings.NewReader(`{"field":"role","value":"admin"}`)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddToCartChecksStock(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	srv.do(authorized(http.MethodGet, "/api/screens/catalog", "viewer-token", nil))

	rec := srv.do(authorized(http.MethodPost, "/api/cart", "viewer-token", strings.NewReader(`{"bookId":"2","quantity":1}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for out of stock, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = srv.do(authorized(http.MethodPost, "/api/cart", "viewer-token", strings.NewReader(`{"bookId":"1","quantity":2}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		CartCount int `json:"cartCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.CartCount != 2 {
		t.Fatalf("expected cart count 2, got %d", body.CartCount)
	}

	rec = srv.do(authorized(http.MethodPost, "/api/cart", "", strings.NewReader(`{"bookId":"1"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without login, got %d", rec.Code)
	}
}

func TestPublishBookMultipart(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"name": "Road", "author": "Kerouac", "category_name": "Travel", "price": "9.90", "stock": "3",
	} {
		if err := form.WriteField(field, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := form.CreateFormFile("cover", "road.png")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/books", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer seller-token")
	rec := srv.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := srv.backend.callLog(); !slices.Equal(got, []string{"upload road.png", "publish Road"}) {
		t.Fatalf("unexpected calls %v", got)
	}
	if srv.backend.published[0].CoverImage != "https://media.example/road.png" {
		t.Fatalf("unexpected cover %q", srv.backend.published[0].CoverImage)
	}
}

func TestPublishBookRejectsViewer(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	rec := srv.do(authorized(http.MethodPost, "/api/books", "viewer-token", strings.NewReader(`{"name":"Road","author":"K","category_name":"Travel","price":"9","stock":"1","cover_image":"https://x/y.png"}`)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(srv.backend.callLog()) != 0 {
		t.Fatalf("expected no backend calls, got %v", srv.backend.callLog())
	}
}

func TestOperationalRoutes(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	for _, target := range []string{"/healthz", "/metrics"} {
		rec := srv.do(httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}
