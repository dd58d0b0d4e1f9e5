package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest looks for a bearer token in the Authorization header first and then in the
// queryParam query parameter ("token" when empty). Browsers cannot set headers on websocket
// upgrades, hence the query fallback.
func TokenFromRequest(r *http.Request, queryParam string) string {
	if r == nil {
		return ""
	}
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if r.URL == nil {
		return ""
	}
	if queryParam == "" {
		queryParam = "token"
	}
	return strings.TrimSpace(r.URL.Query().Get(queryParam))
}

// BearerToken strips a case-insensitive "Bearer " prefix from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
