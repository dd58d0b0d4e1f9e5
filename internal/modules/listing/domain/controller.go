package domain

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	// ErrConfirmationRequired is returned when a destructive action was not confirmed.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrProtectedItem is returned when the target may not be deleted (e.g. the acting user).
	ErrProtectedItem = errors.New("item is protected")
	// ErrInFlight is returned while another mutation for the same item is pending.
	ErrInFlight = errors.New("mutation already in flight")
	// ErrItemNotFound is returned when the item is not part of the local collection.
	ErrItemNotFound = errors.New("item not found in collection")
)

// RemoteCall issues the single backend request behind a mutation.
type RemoteCall func(ctx context.Context, id string) error

// Config describes one list screen.
type Config[T any] struct {
	// Identify returns the backend identifier of an item.
	Identify func(T) string
	Filters  []Filter[T]
	// SortKey is the numeric field behind the sortable column; nil disables sorting.
	SortKey  NumericKey[T]
	PageSize int
	// Clock defaults to time.Now and anchors the date-range presets.
	Clock func() time.Time
}

// View is what a screen renders.
type View[T any] struct {
	Page[T]
	Criteria map[string]string `json:"criteria"`
	Sort     SortState         `json:"sort"`
	Busy     []string          `json:"busy,omitempty"`
}

// Controller owns the state of one list screen: the fetched source, the criteria, the sort
// toggle and the page cursor. The displayed page is always
// Paginate(SortBy(Apply(source, criteria), sort), cursor, pageSize); no stage mutates source.
//
// A Controller is safe for concurrent use. Its lock is never held across a RemoteCall.
type Controller[T any] struct {
	mu        sync.Mutex
	cfg       Config[T]
	source    []T
	criteria  Criteria
	sort      SortState
	cursor    int
	inflight  map[string]struct{}
	protected map[string]struct{}
}

func NewController[T any](cfg Config[T]) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Controller[T]{
		cfg:       cfg,
		sort:      SortNone,
		cursor:    1,
		inflight:  make(map[string]struct{}),
		protected: make(map[string]struct{}),
	}
}

// Replace swaps the whole source collection (initial fetch, manual refresh or polling).
// Pending optimistic edits are not merged: the last writer wins.
func (c *Controller[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = slices.Clone(items)
	c.revalidateLocked()
}

// Source returns a copy of the unfiltered collection.
func (c *Controller[T]) Source() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.source)
}

func (c *Controller[T]) Criteria() Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// SetCriterion updates one text or categorical filter.
func (c *Controller[T]) SetCriterion(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = c.criteria.With(name, value)
	c.revalidateLocked()
}

// SetRange updates one date-range filter.
func (c *Controller[T]) SetRange(name string, r DateRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = c.criteria.WithRange(name, r)
	c.revalidateLocked()
}

// Clear resets every filter to its default.
func (c *Controller[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = c.criteria.Clear()
	c.revalidateLocked()
}

// ToggleSort advances the sort toggle and rewinds to the first page.
func (c *Controller[T]) ToggleSort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg.SortKey == nil {
		return c.sort
	}
	c.sort = c.sort.Toggle()
	c.cursor = 1
	return c.sort
}

// Load replaces criteria, sort and cursor in one step; the cursor is clamped.
func (c *Controller[T]) Load(criteria Criteria, state SortState, page int) View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = criteria
	c.sort = c.sortStateLocked(state)
	c.cursor = ClampPage(page, TotalPages(len(c.deriveLocked()), c.cfg.PageSize))
	return c.viewLocked()
}

// ViewFor derives the page for the given criteria, sort and page without storing any of them,
// so one-off queries leave the screen's own state untouched.
func (c *Controller[T]) ViewFor(criteria Criteria, state SortState, page int) View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	state = c.sortStateLocked(state)
	filtered := Apply(c.source, c.cfg.Filters, criteria, c.cfg.Clock())
	derived := SortBy(filtered, c.cfg.SortKey, state)
	return View[T]{
		Page:     Paginate(derived, page, c.cfg.PageSize),
		Criteria: criteria.Snapshot(),
		Sort:     state,
		Busy:     c.busyLocked(),
	}
}

func (c *Controller[T]) sortStateLocked(state SortState) SortState {
	if c.cfg.SortKey == nil || (state != SortAsc && state != SortDesc) {
		return SortNone
	}
	return state
}

// GoTo moves the cursor, clamped into [1, totalPages], and returns the resulting page.
func (c *Controller[T]) GoTo(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = ClampPage(page, TotalPages(len(c.deriveLocked()), c.cfg.PageSize))
	return c.cursor
}

func (c *Controller[T]) Next() int {
	c.mu.Lock()
	page := c.cursor + 1
	c.mu.Unlock()
	return c.GoTo(page)
}

func (c *Controller[T]) Prev() int {
	c.mu.Lock()
	page := c.cursor - 1
	c.mu.Unlock()
	return c.GoTo(page)
}

// Protect marks identifiers that may never be deleted through this controller.
func (c *Controller[T]) Protect(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			c.protected[trimmed] = struct{}{}
		}
	}
}

// Busy reports whether a mutation for id is in flight, so its control can be disabled.
func (c *Controller[T]) Busy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[strings.TrimSpace(id)]
	return busy
}

// View derives the page to display.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[T]) viewLocked() View[T] {
	return View[T]{
		Page:     Paginate(c.deriveLocked(), c.cursor, c.cfg.PageSize),
		Criteria: c.criteria.Snapshot(),
		Sort:     c.sort,
		Busy:     c.busyLocked(),
	}
}

func (c *Controller[T]) busyLocked() []string {
	busy := make([]string, 0, len(c.inflight))
	for id := range c.inflight {
		busy = append(busy, id)
	}
	slices.Sort(busy)
	return busy
}

// Delete removes id after the backend confirms. The request is only issued when the action
// was confirmed, the item is not protected, no other mutation for it is pending and it is
// part of the local collection. On failure the collection is left untouched.
func (c *Controller[T]) Delete(ctx context.Context, id string, confirmed bool, remote RemoteCall) error {
	id = strings.TrimSpace(id)
	if !confirmed {
		return ErrConfirmationRequired
	}
	c.mu.Lock()
	if _, protected := c.protected[id]; protected {
		c.mu.Unlock()
		return ErrProtectedItem
	}
	if err := c.beginLocked(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := remote(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		return err
	}
	c.source = slices.DeleteFunc(c.source, func(item T) bool {
		return c.cfg.Identify(item) == id
	})
	c.revalidateLocked()
	return nil
}

// Patch issues remote for id and, once it succeeds, replaces the local item with mutate(item).
func (c *Controller[T]) Patch(ctx context.Context, id string, remote RemoteCall, mutate func(T) T) error {
	id = strings.TrimSpace(id)
	c.mu.Lock()
	if err := c.beginLocked(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := remote(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		return err
	}
	for i, item := range c.source {
		if c.cfg.Identify(item) == id {
			c.source[i] = mutate(item)
		}
	}
	c.revalidateLocked()
	return nil
}

// Find returns the local item with the given id.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = strings.TrimSpace(id)
	for _, item := range c.source {
		if c.cfg.Identify(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) beginLocked(id string) error {
	if _, busy := c.inflight[id]; busy {
		return ErrInFlight
	}
	if !slices.ContainsFunc(c.source, func(item T) bool { return c.cfg.Identify(item) == id }) {
		return ErrItemNotFound
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Controller[T]) deriveLocked() []T {
	filtered := Apply(c.source, c.cfg.Filters, c.criteria, c.cfg.Clock())
	return SortBy(filtered, c.cfg.SortKey, c.sort)
}

// revalidateLocked rewinds the cursor to the first page when the derived collection no longer
// reaches it.
func (c *Controller[T]) revalidateLocked() {
	if c.cursor > TotalPages(len(c.deriveLocked()), c.cfg.PageSize) {
		c.cursor = 1
	}
}
