package domain

import (
	"strings"

	"bookshelfWs/internal/shared/normalization"
)

// StatusApproved marks a book that passed moderation and may be listed.
const StatusApproved = "approved"

// StockLevel buckets a stock count for badge rendering.
type StockLevel string

const (
	StockOut StockLevel = "out"
	StockLow StockLevel = "low"
	StockIn  StockLevel = "in"
)

// lowStockThreshold is the highest count still reported as low.
const lowStockThreshold = 10

// Book is one title as returned by the catalog endpoints.
type Book struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Author       string     `json:"author"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	Stock        int        `json:"stock"`
	Price        float64    `json:"price"`
	CoverImage   string     `json:"coverImage,omitempty"`
	SellerID     string     `json:"sellerId,omitempty"`
	// Availability is the StockLevel badge, filled in by Present.
	Availability StockLevel `json:"stockLevel,omitempty"`
}

// NormalizeBook builds a Book from a loosely typed payload. Books without an id are rejected.
func NormalizeBook(raw map[string]any) (Book, bool) {
	id := normalization.AsString(raw["id"])
	if id == "" {
		id = normalization.AsString(raw["book_id"])
	}
	if id == "" {
		return Book{}, false
	}

	book := Book{
		ID:          id,
		Name:        normalization.AsString(raw["name"]),
		Author:      normalization.AsString(raw["author"]),
		Description: normalization.AsString(raw["description"]),
		Status:      strings.ToLower(normalization.AsString(raw["status"])),
		Stock:       normalization.AsInt(raw["stock"]),
		Price:       normalization.AsFloat64(raw["price"]),
		CoverImage:  coverReference(raw["cover_image"]),
		SellerID:    normalization.AsString(raw["user_id"]),
	}

	// category arrives either as {"name": "..."} or as a flat category_name.
	book.Category = normalization.NestedString(raw, "category", "name")
	if book.Category == "" {
		book.Category = normalization.AsString(raw["category_name"])
	}
	if book.Category == "" {
		book.Category = normalization.AsString(raw["category"])
	}
	return book, true
}

// NormalizeBooks keeps the normalizable entries of records.
func NormalizeBooks(records []map[string]any) []Book {
	books := make([]Book, 0, len(records))
	for _, raw := range records {
		if book, ok := NormalizeBook(raw); ok {
			books = append(books, book)
		}
	}
	return books
}

// Approved keeps the books whose status is approved.
func Approved(books []Book) []Book {
	out := make([]Book, 0, len(books))
	for _, book := range books {
		if book.IsApproved() {
			out = append(out, book)
		}
	}
	return out
}

func (b Book) IsApproved() bool {
	return b.Status == StatusApproved
}

// InStock reports whether at least one copy can be ordered.
func (b Book) InStock() bool {
	return b.Stock > 0
}

// StockLevel buckets the stock count: out at zero, low up to ten, in above.
func (b Book) StockLevel() StockLevel {
	switch {
	case b.Stock <= 0:
		return StockOut
	case b.Stock <= lowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// Present prepares b for display: the cover reference becomes a URL under imageBase and the
// stock badge is computed.
func (b Book) Present(imageBase string) Book {
	b.CoverImage = b.CoverURL(imageBase)
	b.Availability = b.StockLevel()
	return b
}

// CoverURL resolves the cover reference against imageBase. Absolute URLs are returned as is.
func (b Book) CoverURL(imageBase string) string {
	return ResolveImageURL(b.CoverImage, imageBase)
}

// ResolveImageURL turns a stored image reference into a URL. Relative paths are joined to base.
func ResolveImageURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if base == "" {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// coverReference accepts a plain string or a hosted-media object carrying url.
func coverReference(value any) string {
	if obj := normalization.AsMap(value); obj != nil {
		if url := normalization.AsString(obj["secure_url"]); url != "" {
			return url
		}
		return normalization.AsString(obj["url"])
	}
	return normalization.AsString(value)
}
