package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	orders "bookshelfWs/internal/modules/orders/domain"
	users "bookshelfWs/internal/modules/users/domain"
	"bookshelfWs/internal/shared/normalization"
	"bookshelfWs/internal/shared/session"
)

// Screen names.
const (
	ScreenOrders   = "orders"
	ScreenUsers    = "users"
	ScreenBooks    = "books"
	ScreenCatalog  = "catalog"
	ScreenMyOrders = "my-orders"
)

// Criterion names shared by the screens.
const (
	SearchKey  = "search"
	CreatedKey = "created"
)

// ErrUnknownScreen is returned for screen names that are not registered.
var ErrUnknownScreen = errors.New("unknown screen")

// ScreenDefinition describes the static behavior of a list screen.
type ScreenDefinition struct {
	Name string
	// Entity is the backend entity whose change events refresh this screen.
	Entity string
	// Noun names one item in notifications, e.g. "User".
	Noun      string
	SearchKey string
	RangeKey  string
	PageSize  int
	Polled    bool
	// Public screens may be browsed without a token.
	Public bool
	// DeletePermission is required to delete; empty means the screen does not delete.
	DeletePermission string
	// PatchPermissions maps each updatable field to the permission it requires.
	PatchPermissions map[string]string
	// ProtectActor forbids deleting the item whose id equals the acting user's id.
	ProtectActor bool
	// OwnRecords screens list the actor's records only. Raw entity events are not forwarded
	// to them; they still refresh when the entity changes.
	OwnRecords bool
}

// CanDelete reports whether the screen supports deletion at all.
func (d ScreenDefinition) CanDelete() bool {
	return d.DeletePermission != ""
}

// PatchPermission returns the permission guarding field, and false when the field is not updatable.
func (d ScreenDefinition) PatchPermission(field string) (string, bool) {
	perm, ok := d.PatchPermissions[strings.ToLower(strings.TrimSpace(field))]
	return perm, ok
}

// UpdateFunc sends a validated field value for id to the backend.
type UpdateFunc func(ctx context.Context, id, value string) error

// Screen is a list controller bound to one record type.
type Screen interface {
	Definition() ScreenDefinition
	// Replace decodes raw backend records into the source collection and returns its size.
	Replace(records []map[string]any) int
	View() any
	// Apply loads query into the screen's own criteria, sort and cursor.
	Apply(query domain.PagedQuery)
	// Preview returns the view for query without changing the screen's state.
	Preview(query domain.PagedQuery) any
	SetCriterion(name, value string)
	SetRange(preset, from, to string)
	Clear()
	ToggleSort() domain.SortState
	GoTo(page int) int
	Next() int
	Prev() int
	Protect(ids ...string)
	Busy(id string) bool
	// Item returns the local record with id.
	Item(id string) (any, bool)
	Delete(ctx context.Context, id string, confirmed bool, remote domain.RemoteCall) error
	Patch(ctx context.Context, id, field, value string, update UpdateFunc) error
}

type patcher[T any] func(field, value string) (string, func(T) T, error)

type screenAdapter[T any] struct {
	def    ScreenDefinition
	ctrl   *domain.Controller[T]
	decode func([]map[string]any) []T
	patch  patcher[T]
}

func (a *screenAdapter[T]) Definition() ScreenDefinition { return a.def }

func (a *screenAdapter[T]) Replace(records []map[string]any) int {
	items := a.decode(records)
	a.ctrl.Replace(items)
	return len(items)
}

func (a *screenAdapter[T]) View() any { return a.ctrl.View() }

// Apply loads a query into the controller. The page size stays the screen's own.
func (a *screenAdapter[T]) Apply(query domain.PagedQuery) {
	query = query.Normalize(a.def.PageSize)
	a.ctrl.Load(query.Criteria(a.def.SearchKey, a.def.RangeKey), query.Sort, query.Page)
}

func (a *screenAdapter[T]) Preview(query domain.PagedQuery) any {
	query = query.Normalize(a.def.PageSize)
	return a.ctrl.ViewFor(query.Criteria(a.def.SearchKey, a.def.RangeKey), query.Sort, query.Page)
}

func (a *screenAdapter[T]) SetCriterion(name, value string) { a.ctrl.SetCriterion(name, value) }

func (a *screenAdapter[T]) SetRange(preset, from, to string) {
	if a.def.RangeKey == "" {
		return
	}
	a.ctrl.SetRange(a.def.RangeKey, domain.ParseDateRange(preset, from, to, nil))
}

func (a *screenAdapter[T]) Clear()                       { a.ctrl.Clear() }
func (a *screenAdapter[T]) ToggleSort() domain.SortState { return a.ctrl.ToggleSort() }
func (a *screenAdapter[T]) GoTo(page int) int            { return a.ctrl.GoTo(page) }
func (a *screenAdapter[T]) Next() int                    { return a.ctrl.Next() }
func (a *screenAdapter[T]) Prev() int                    { return a.ctrl.Prev() }
func (a *screenAdapter[T]) Protect(ids ...string)        { a.ctrl.Protect(ids...) }
func (a *screenAdapter[T]) Busy(id string) bool          { return a.ctrl.Busy(id) }

func (a *screenAdapter[T]) Item(id string) (any, bool) {
	item, ok := a.ctrl.Find(id)
	if !ok {
		return nil, false
	}
	return item, true
}

func (a *screenAdapter[T]) Delete(ctx context.Context, id string, confirmed bool, remote domain.RemoteCall) error {
	if !a.def.CanDelete() {
		return port.ErrUnsupported
	}
	return a.ctrl.Delete(ctx, id, confirmed, remote)
}

func (a *screenAdapter[T]) Patch(ctx context.Context, id, field, value string, update UpdateFunc) error {
	if a.patch == nil {
		return port.ErrUnsupported
	}
	normalized, mutate, err := a.patch(strings.ToLower(strings.TrimSpace(field)), value)
	if err != nil {
		return err
	}
	return a.ctrl.Patch(ctx, id, func(ctx context.Context, id string) error {
		return update(ctx, id, normalized)
	}, mutate)
}

// ScreenRegistry builds fresh screens by name.
type ScreenRegistry struct {
	clock       func() time.Time
	imageBase   string
	definitions map[string]ScreenDefinition
	factories   map[string]func(ScreenDefinition) Screen
}

// NewScreenRegistry registers the orders, users, approved books, catalog and my-orders screens.
func NewScreenRegistry(clock func() time.Time) *ScreenRegistry {
	if clock == nil {
		clock = time.Now
	}
	r := &ScreenRegistry{
		clock:       clock,
		definitions: make(map[string]ScreenDefinition),
		factories:   make(map[string]func(ScreenDefinition) Screen),
	}
	r.register(ScreenDefinition{
		Name:             ScreenOrders,
		Entity:           "orders",
		Noun:             "Order",
		SearchKey:        SearchKey,
		RangeKey:         CreatedKey,
		PageSize:         10,
		PatchPermissions: map[string]string{"status": session.PermissionManageOrders},
	}, r.newOrdersScreen)
	r.register(ScreenDefinition{
		Name:             ScreenUsers,
		Entity:           "users",
		Noun:             "User",
		SearchKey:        SearchKey,
		PageSize:         10,
		DeletePermission: session.PermissionDeleteUsers,
		PatchPermissions: map[string]string{"role": session.PermissionUpdateRoles},
		ProtectActor:     true,
	}, r.newUsersScreen)
	r.register(ScreenDefinition{
		Name:             ScreenBooks,
		Entity:           "books",
		Noun:             "Book",
		SearchKey:        SearchKey,
		PageSize:         5,
		Polled:           true,
		DeletePermission: session.PermissionManageBooks,
	}, r.newBooksScreen)
	r.register(ScreenDefinition{
		Name:      ScreenCatalog,
		Entity:    "books",
		Noun:      "Book",
		SearchKey: SearchKey,
		PageSize:  8,
		Public:    true,
	}, r.newCatalogScreen)
	r.register(ScreenDefinition{
		Name:       ScreenMyOrders,
		Entity:     "orders",
		Noun:       "Order",
		SearchKey:  SearchKey,
		RangeKey:   CreatedKey,
		PageSize:   10,
		OwnRecords: true,
	}, r.newMyOrdersScreen)
	return r
}

// WithImageBase sets the host that relative book cover paths are resolved against.
func (r *ScreenRegistry) WithImageBase(base string) *ScreenRegistry {
	r.imageBase = strings.TrimSpace(base)
	return r
}

func (r *ScreenRegistry) register(def ScreenDefinition, factory func(ScreenDefinition) Screen) {
	r.definitions[def.Name] = def
	r.factories[def.Name] = factory
}

// Resolve normalizes name and returns its definition.
func (r *ScreenRegistry) Resolve(name string) (ScreenDefinition, error) {
	canonical := normalization.NormalizeScreen(name)
	def, ok := r.definitions[canonical]
	if !ok {
		return ScreenDefinition{}, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	return def, nil
}

// New builds an empty screen.
func (r *ScreenRegistry) New(name string) (Screen, error) {
	def, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.factories[def.Name](def), nil
}

// Names lists the registered screens in a stable order.
func (r *ScreenRegistry) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Polled lists the screens refreshed on a timer.
func (r *ScreenRegistry) Polled() []string {
	var names []string
	for _, name := range r.Names() {
		if r.definitions[name].Polled {
			names = append(names, name)
		}
	}
	return names
}

// ForEntity lists the screens that display entity.
func (r *ScreenRegistry) ForEntity(entity string) []string {
	entity = normalization.NormalizeScreen(entity)
	var names []string
	for _, name := range r.Names() {
		if r.definitions[name].Entity == entity {
			names = append(names, name)
		}
	}
	return names
}

func (r *ScreenRegistry) ordersController(def ScreenDefinition) *domain.Controller[orders.Order] {
	return domain.NewController(domain.Config[orders.Order]{
		Identify: func(o orders.Order) string { return o.ID },
		Filters: []domain.Filter[orders.Order]{
			domain.TextSearch[orders.Order]{Key: SearchKey, Fields: orders.Order.SearchFields},
			domain.Equals[orders.Order]{Key: "status", Field: func(o orders.Order) string { return string(o.Status) }},
			domain.Equals[orders.Order]{Key: "payment", Field: func(o orders.Order) string { return string(o.PaymentStatus) }},
			domain.WithinDates[orders.Order]{Key: CreatedKey, Field: func(o orders.Order) string { return o.CreatedAt }},
		},
		PageSize: def.PageSize,
		Clock:    r.clock,
	})
}

func (r *ScreenRegistry) newOrdersScreen(def ScreenDefinition) Screen {
	return &screenAdapter[orders.Order]{
		def:    def,
		ctrl:   r.ordersController(def),
		decode: orders.NormalizeOrders,
		patch: func(field, value string) (string, func(orders.Order) orders.Order, error) {
			if field != "status" {
				return "", nil, port.ErrUnsupported
			}
			status, ok := orders.ParseStatus(value)
			if !ok {
				return "", nil, port.Invalid("unknown order status %q", value)
			}
			return string(status), func(o orders.Order) orders.Order {
				o.Status = status
				return o
			}, nil
		},
	}
}

func (r *ScreenRegistry) newMyOrdersScreen(def ScreenDefinition) Screen {
	return &screenAdapter[orders.Order]{
		def:    def,
		ctrl:   r.ordersController(def),
		decode: orders.NormalizeOrders,
	}
}

func (r *ScreenRegistry) newUsersScreen(def ScreenDefinition) Screen {
	return &screenAdapter[users.User]{
		def: def,
		ctrl: domain.NewController(domain.Config[users.User]{
			Identify: func(u users.User) string { return u.ID },
			Filters: []domain.Filter[users.User]{
				domain.TextSearch[users.User]{Key: SearchKey, Fields: func(u users.User) []string { return []string{u.Name, u.Email} }},
				domain.Equals[users.User]{Key: "role", Field: func(u users.User) string { return string(u.Role) }},
			},
			PageSize: def.PageSize,
			Clock:    r.clock,
		}),
		decode: users.NormalizeUsers,
		patch: func(field, value string) (string, func(users.User) users.User, error) {
			if field != "role" {
				return "", nil, port.ErrUnsupported
			}
			role, ok := users.ParseRole(value)
			if !ok {
				return "", nil, port.Invalid("unknown role %q", value)
			}
			return string(role), func(u users.User) users.User {
				u.Role = role
				return u
			}, nil
		},
	}
}

func bookSearchFields(b books.Book) []string {
	return []string{b.Name, b.Author, b.Category}
}

func (r *ScreenRegistry) newBooksScreen(def ScreenDefinition) Screen {
	return &screenAdapter[books.Book]{
		def: def,
		ctrl: domain.NewController(domain.Config[books.Book]{
			Identify: func(b books.Book) string { return b.ID },
			Filters: []domain.Filter[books.Book]{
				domain.TextSearch[books.Book]{Key: SearchKey, Fields: bookSearchFields},
			},
			SortKey:  func(b books.Book) float64 { return float64(b.Stock) },
			PageSize: def.PageSize,
			Clock:    r.clock,
		}),
		decode: r.decodeApprovedBooks,
	}
}

func (r *ScreenRegistry) newCatalogScreen(def ScreenDefinition) Screen {
	return &screenAdapter[books.Book]{
		def: def,
		ctrl: domain.NewController(domain.Config[books.Book]{
			Identify: func(b books.Book) string { return b.ID },
			Filters: []domain.Filter[books.Book]{
				domain.TextSearch[books.Book]{Key: SearchKey, Fields: bookSearchFields},
				domain.OneOf[books.Book]{Key: "section", Field: func(b books.Book) string { return b.Category }},
			},
			SortKey:  func(b books.Book) float64 { return b.Price },
			PageSize: def.PageSize,
			Clock:    r.clock,
		}),
		decode: r.decodeApprovedBooks,
	}
}

func (r *ScreenRegistry) decodeApprovedBooks(records []map[string]any) []books.Book {
	approved := books.Approved(books.NormalizeBooks(records))
	for i := range approved {
		approved[i] = approved[i].Present(r.imageBase)
	}
	return approved
}
