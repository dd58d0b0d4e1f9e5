package normalization

import "strings"

// screenAliases maps the names the UI and the event stream use for a list screen to its canonical form.
var screenAliases = map[string]string{
	"order":        "orders",
	"orders":       "orders",
	"admin-orders": "orders",

	"user":      "users",
	"users":     "users",
	"customer":  "users",
	"customers": "users",

	"book":           "books",
	"books":          "books",
	"approved-books": "books",
	"approvedbooks":  "books",

	"catalog":  "catalog",
	"catalogs": "catalog",
	"section":  "catalog",
	"sections": "catalog",
	"store":    "catalog",

	"my-orders":   "my-orders",
	"myorders":    "my-orders",
	"user-orders": "my-orders",
	"userorders":  "my-orders",
}

// NormalizeScreen converts various screen name formats to their canonical form.
//
//	NormalizeScreen("Order")          => "orders"
//	NormalizeScreen("approved_books") => "books"
//	NormalizeScreen("custom")         => "custom"
func NormalizeScreen(raw string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if canonical, found := screenAliases[normalized]; found {
		return canonical
	}
	return normalized
}
