package domain

import "testing"

func TestNormalizeBook(t *testing.T) {
	raw := map[string]any{
		"id":          float64(42),
		"name":        " Liberty ",
		"author":      "Ann",
		"status":      "Approved",
		"stock":       "12",
		"price":       "9.50",
		"category":    map[string]any{"name": "Travel"},
		"cover_image": map[string]any{"url": "https://cdn.example/c.png"},
	}
	book, ok := NormalizeBook(raw)
	if !ok {
		t.Fatal("expected book")
	}
	if book.ID != "42" || book.Name != "Liberty" || book.Category != "Travel" {
		t.Fatalf("unexpected book %#v", book)
	}
	if !book.IsApproved() || book.Stock != 12 || book.Price != 9.5 {
		t.Fatalf("unexpected status/stock/price %#v", book)
	}
	if book.CoverImage != "https://cdn.example/c.png" {
		t.Fatalf("unexpected cover %q", book.CoverImage)
	}

	if _, ok := NormalizeBook(map[string]any{"name": "no id"}); ok {
		t.Fatal("expected book without id to be rejected")
	}
}

func TestApprovedFilter(t *testing.T) {
	books := NormalizeBooks([]map[string]any{
		{"id": 1, "status": "approved"},
		{"id": 2, "status": "pending"},
		{"status": "approved"},
		{"id": 3, "status": "APPROVED"},
	})
	approved := Approved(books)
	if len(approved) != 2 || approved[0].ID != "1" || approved[1].ID != "3" {
		t.Fatalf("unexpected approved books %#v", approved)
	}
}

func TestStockLevel(t *testing.T) {
	cases := []struct {
		stock    int
		expected StockLevel
	}{
		{stock: 0, expected: StockOut},
		{stock: -1, expected: StockOut},
		{stock: 1, expected: StockLow},
		{stock: 10, expected: StockLow},
		{stock: 11, expected: StockIn},
	}
	for _, tc := range cases {
		if got := (Book{Stock: tc.stock}).StockLevel(); got != tc.expected {
			t.Fatalf("stock %d: expected %s got %s", tc.stock, tc.expected, got)
		}
	}
}

func TestResolveImageURL(t *testing.T) {
	cases := []struct {
		ref, base, expected string
	}{
		{ref: "https://cdn/x.png", base: "http://img/", expected: "https://cdn/x.png"},
		{ref: "covers/x.png", base: "http://img/", expected: "http://img/covers/x.png"},
		{ref: "/x.png", base: "http://img", expected: "http://img/x.png"},
		{ref: "x.png", base: "", expected: "x.png"},
		{ref: "  ", base: "http://img", expected: ""},
	}
	for _, tc := range cases {
		if got := ResolveImageURL(tc.ref, tc.base); got != tc.expected {
			t.Fatalf("ResolveImageURL(%q, %q) expected %q got %q", tc.ref, tc.base, tc.expected, got)
		}
	}
}

func TestPresentResolvesCoverAndBadge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		book      Book
		base      string
		wantCover string
		wantLevel StockLevel
	}{
		{name: "relative cover", book: Book{CoverImage: "covers/a.png", Stock: 3}, base: "https://img.example/", wantCover: "https://img.example/covers/a.png", wantLevel: StockLow},
		{name: "hosted cover", book: Book{CoverImage: "https://cdn.example/b.png", Stock: 40}, base: "https://img.example", wantCover: "https://cdn.example/b.png", wantLevel: StockIn},
		{name: "no cover", book: Book{}, base: "https://img.example", wantCover: "", wantLevel: StockOut},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.book.Present(tc.base)
			if got.CoverImage != tc.wantCover || got.Availability != tc.wantLevel {
				t.Fatalf("expected %q/%s, got %q/%s", tc.wantCover, tc.wantLevel, got.CoverImage, got.Availability)
			}
		})
	}
}
