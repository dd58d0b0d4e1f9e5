package infrastructure

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsExposition(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveFetch("orders", "ok")
	m.ObserveFetch("orders", "malformed")
	m.ObserveMutation("users", "delete", "rejected")
	m.ObserveUpload("ok")
	m.SetOpenSessions(3)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[string]int{}
	for _, family := range families {
		counts[family.GetName()] = len(family.GetMetric())
	}
	if counts["bookshelf_screen_fetches_total"] != 2 || counts["bookshelf_screen_mutations_total"] != 1 {
		t.Fatalf("unexpected series %v", counts)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "bookshelf_open_sessions 3") {
		t.Fatal("expected open sessions gauge in exposition")
	}
}
