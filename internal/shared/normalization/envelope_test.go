package normalization

import "testing"

func TestUnwrapCollectionShapes(t *testing.T) {
	item := map[string]any{"id": "1"}
	cases := []struct {
		name    string
		payload any
		keys    []string
		ok      bool
		count   int
	}{
		{name: "top level array", payload: []any{item, item}, ok: true, count: 2},
		{name: "data array", payload: map[string]any{"data": []any{item}}, ok: true, count: 1},
		{name: "data named key", payload: map[string]any{"data": map[string]any{"users": []any{item}}}, keys: []string{"users"}, ok: true, count: 1},
		{name: "named key", payload: map[string]any{"orders": []any{item, item, item}}, keys: []string{"orders"}, ok: true, count: 3},
		{name: "empty array is valid", payload: map[string]any{"books": []any{}}, keys: []string{"books"}, ok: true, count: 0},
		{name: "drops non objects", payload: []any{item, "junk", 4}, ok: true, count: 1},
		{name: "unknown key", payload: map[string]any{"rows": []any{item}}, keys: []string{"orders"}, ok: false},
		{name: "scalar", payload: "nope", ok: false},
		{name: "nil", payload: nil, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, ok := UnwrapCollection(tc.payload, tc.keys...)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v got %v", tc.ok, ok)
			}
			if len(items) != tc.count {
				t.Fatalf("expected %d items got %d", tc.count, len(items))
			}
		})
	}
}

func TestUnwrapRecord(t *testing.T) {
	book := map[string]any{"id": "b1"}
	if got, ok := UnwrapRecord(map[string]any{"book": book}, "book"); !ok || got["id"] != "b1" {
		t.Fatalf("expected named record, got %#v", got)
	}
	if got, ok := UnwrapRecord(map[string]any{"data": map[string]any{"user": book}}, "user"); !ok || got["id"] != "b1" {
		t.Fatalf("expected nested named record, got %#v", got)
	}
	if _, ok := UnwrapRecord([]any{book}, "book"); ok {
		t.Fatal("expected arrays to be rejected")
	}
}
