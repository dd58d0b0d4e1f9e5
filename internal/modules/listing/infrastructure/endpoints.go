package infrastructure

import (
	"net/http"
	"strings"

	"bookshelfWs/internal/modules/listing/application/usecase"
)

type patchEndpoint struct {
	path    string
	bodyKey string
}

// screenEndpoint lists the backend routes behind one list screen. Paths use resty path
// parameters, e.g. /users/{id}.
type screenEndpoint struct {
	listPath       string
	collectionKeys []string
	deletePath     string
	patches        map[string]patchEndpoint
}

var screenEndpoints = map[string]screenEndpoint{
	usecase.ScreenOrders: {
		listPath:       "/admin/orders",
		collectionKeys: []string{"orders"},
		patches: map[string]patchEndpoint{
			"status": {path: "/admin/orders/{id}/status", bodyKey: "status"},
		},
	},
	usecase.ScreenUsers: {
		listPath:       "/users",
		collectionKeys: []string{"users"},
		deletePath:     "/users/{id}",
		patches: map[string]patchEndpoint{
			"role": {path: "/users/{id}/role", bodyKey: "role"},
		},
	},
	usecase.ScreenBooks: {
		listPath:       "/books/requested",
		collectionKeys: []string{"books", "requests"},
		deletePath:     "/admin/book/{id}",
	},
	usecase.ScreenCatalog: {
		listPath:       "/books",
		collectionKeys: []string{"books"},
	},
	usecase.ScreenMyOrders: {
		listPath:       "/orders/userOrders",
		collectionKeys: []string{"orders"},
	},
}

const (
	publishPath       = "/books"
	cartAddPath       = "/cart/add"
	sellerRequestPath = "/my-seller-request"
	categoriesPath    = "/categories"
)

func lookupEndpoint(screen string) (screenEndpoint, bool) {
	endpoint, ok := screenEndpoints[strings.ToLower(strings.TrimSpace(screen))]
	return endpoint, ok
}

func (e screenEndpoint) patch(field string) (patchEndpoint, bool) {
	p, ok := e.patches[strings.ToLower(strings.TrimSpace(field))]
	return p, ok && p.path != ""
}

// patchMethod is PUT for every update route the backend exposes.
const patchMethod = http.MethodPut
