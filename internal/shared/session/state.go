// Package session holds the per-session application state that the UI used to keep in a
// global store: the access token, the acting user, their permissions and the cart count.
//
// Screens never receive *State directly. They get the narrow capability they need:
// Reader for anything that only inspects the session, CartWriter for the storefront.
package session

import (
	"slices"
	"strings"
	"sync"

	"bookshelfWs/internal/shared/auth"
)

// Permission names granted by the auth service.
const (
	PermissionUpdateRoles  = "update_roles"
	PermissionDeleteUsers  = "delete_users"
	PermissionManageBooks  = "manage_books"
	PermissionManageOrders = "manage_orders"
)

// Actor identifies the user behind a session.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Reader exposes read-only session data.
type Reader interface {
	ID() string
	Token() string
	Actor() Actor
	Can(permission string) bool
	HasRole(role string) bool
}

// CartWriter is granted to storefront screens only.
type CartWriter interface {
	CartCount() int
	AddToCart(quantity int) int
	SetCartCount(count int)
}

// State is the concrete state holder. It is safe for concurrent use.
type State struct {
	mu          sync.RWMutex
	id          string
	token       string
	actor       Actor
	roles       []string
	permissions []string
	cartCount   int
}

// FromClaims builds the state for a validated token.
func FromClaims(token string, claims *auth.Claims) *State {
	state := &State{token: strings.TrimSpace(token)}
	if claims == nil {
		return state
	}
	state.id = claims.SessionID
	state.actor = Actor{ID: claims.Subject, Name: claims.Name, Email: claims.Email}
	state.roles = lowerAll(claims.Roles)
	state.permissions = lowerAll(claims.Permissions)
	if len(state.roles) > 0 {
		state.actor.Role = state.roles[0]
	}
	return state
}

// Renew swaps in a fresh token for the same session, keeping the cart count.
func (s *State) Renew(token string, claims *auth.Claims) {
	next := FromClaims(token, claims)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = next.token
	s.actor = next.actor
	s.roles = next.roles
	s.permissions = next.permissions
}

func (s *State) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) Actor() Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

// Can reports whether the session holds permission. Admins hold every permission.
func (s *State) Can(permission string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if slices.Contains(s.roles, "admin") {
		return true
	}
	return slices.Contains(s.permissions, strings.ToLower(strings.TrimSpace(permission)))
}

func (s *State) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, strings.ToLower(strings.TrimSpace(role)))
}

func (s *State) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartCount
}

// AddToCart bumps the cart count and returns the new value.
func (s *State) AddToCart(quantity int) int {
	if quantity <= 0 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartCount += quantity
	return s.cartCount
}

func (s *State) SetCartCount(count int) {
	if count < 0 {
		count = 0
	}
	s.mu.Lock()
	s.cartCount = count
	s.mu.Unlock()
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.ToLower(strings.TrimSpace(v)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var (
	_ Reader     = (*State)(nil)
	_ CartWriter = (*State)(nil)
)
