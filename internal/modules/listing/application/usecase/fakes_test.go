package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	"bookshelfWs/internal/shared/auth"
)

type fakeValidator struct {
	claims map[string]*auth.Claims
}

func (v *fakeValidator) Validate(token string) (*auth.Claims, error) {
	if claims, ok := v.claims[token]; ok {
		copied := *claims
		return &copied, nil
	}
	return nil, auth.ErrInvalidToken
}

func newClaims(sessionID, subject string, roles []string, permissions ...string) *auth.Claims {
	return &auth.Claims{
		SessionID:        sessionID,
		Roles:            roles,
		Permissions:      permissions,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

type fakeFetcher struct {
	mu      sync.Mutex
	records map[string][]map[string]any
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) FetchCollection(_ context.Context, token, screen string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, screen+":"+token)
	if err := f.errs[screen]; err != nil {
		return nil, err
	}
	return f.records[screen], nil
}

func (f *fakeFetcher) set(screen string, records []map[string]any, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records == nil {
		f.records = map[string][]map[string]any{}
		f.errs = map[string]error{}
	}
	f.records[screen] = records
	f.errs[screen] = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMutator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *fakeMutator) Delete(_ context.Context, _, screen, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("delete %s %s", screen, id))
	return m.err
}

func (m *fakeMutator) Update(_ context.Context, _, screen, id, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf("update %s %s %s=%s", screen, id, field, value))
	return m.err
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *fakeBroadcaster) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messages))
	for _, msg := range b.messages {
		out = append(out, msg.Topic)
	}
	return out
}

func (b *fakeBroadcaster) last(topic string) *domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].Topic == topic {
			return b.messages[i]
		}
	}
	return nil
}

type fakeUploader struct {
	uploads []port.Media
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, media port.Media) (*port.UploadedMedia, error) {
	u.uploads = append(u.uploads, media)
	if u.err != nil {
		return nil, u.err
	}
	return &port.UploadedMedia{URL: "https://media.example/" + media.Filename, PublicID: "pid-1"}, nil
}

type fakePublisher struct {
	published []books.Listing
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, listing books.Listing) (map[string]any, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.published = append(p.published, listing)
	return map[string]any{"id": "b-1", "name": listing.Name}, nil
}

type fakeCart struct {
	calls []string
	count int
	err   error
}

func (c *fakeCart) AddToCart(_ context.Context, _, bookID string, quantity int) (int, error) {
	c.calls = append(c.calls, fmt.Sprintf("%s x%d", bookID, quantity))
	return c.count, c.err
}

type harness struct {
	fetcher     *fakeFetcher
	mutator     *fakeMutator
	broadcaster *fakeBroadcaster
	browse      *BrowseUseCase
	mutate      *MutateUseCase
}

func newHarness(t interface{ Fatalf(string, ...any) }) *harness {
	validator := &fakeValidator{claims: map[string]*auth.Claims{
		"admin-token":  newClaims("s-admin", "1", []string{"admin"}),
		"admin-2":      newClaims("s-admin-2", "2", []string{"admin"}),
		"viewer-token": newClaims("s-viewer", "3", []string{"user"}),
		"seller-token": newClaims("s-seller", "4", []string{"seller"}),
	}}
	h := &harness{
		fetcher:     &fakeFetcher{},
		mutator:     &fakeMutator{},
		broadcaster: &fakeBroadcaster{},
	}
	browse, err := NewBrowseUseCase(validator, h.fetcher, NewScreenRegistry(nil), h.broadcaster, BrowseOptions{MaxSessions: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.browse = browse
	h.mutate = NewMutateUseCase(browse, h.mutator, nil)
	return h
}

func userRecords(n int) []map[string]any {
	records := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, map[string]any{
			"id":    float64(i),
			"name":  fmt.Sprintf("user-%02d", i),
			"email": fmt.Sprintf("user%d@books.io", i),
			"role":  "user",
		})
	}
	return records
}

func bookRecords(stocks ...int) []map[string]any {
	records := make([]map[string]any, 0, len(stocks))
	for i, stock := range stocks {
		records = append(records, map[string]any{
			"id":       fmt.Sprint(i + 1),
			"name":     fmt.Sprintf("book-%d", i+1),
			"status":   "approved",
			"stock":    stock,
			"category": map[string]any{"name": "Travel"},
		})
	}
	return records
}
