package domain

import (
	"strings"

	"bookshelfWs/internal/shared/normalization"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

var (
	validStatuses        = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled}
	validPaymentStatuses = []PaymentStatus{PaymentPaid, PaymentUnpaid, PaymentRefunded, PaymentFailed}
)

// Statuses lists the fulfilment states in workflow order.
func Statuses() []Status {
	return append([]Status(nil), validStatuses...)
}

// PaymentStatuses lists the settlement states.
func PaymentStatuses() []PaymentStatus {
	return append([]PaymentStatus(nil), validPaymentStatuses...)
}

// ParseStatus normalizes raw and reports whether it is a known fulfilment state.
// "cancelled" is accepted as an alias.
func ParseStatus(raw string) (Status, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "cancelled" {
		value = string(StatusCanceled)
	}
	for _, status := range validStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return Status(value), false
}

// ValidStatus reports whether raw names a known fulfilment state.
func ValidStatus(raw string) bool {
	_, ok := ParseStatus(raw)
	return ok
}

// ValidPaymentStatus reports whether raw names a known settlement state.
func ValidPaymentStatus(raw string) bool {
	value := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range validPaymentStatuses {
		if status == value {
			return true
		}
	}
	return false
}

// Customer is the account that placed an order.
type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item is one order line.
type Item struct {
	BookID     string  `json:"bookId,omitempty"`
	BookName   string  `json:"bookName"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	CoverImage string  `json:"coverImage,omitempty"`
}

// Subtotal is price times quantity; a missing quantity counts as one.
func (i Item) Subtotal() float64 {
	qty := i.Quantity
	if qty <= 0 {
		qty = 1
	}
	return i.Price * float64(qty)
}

// Order is one row of the admin orders screen or of a customer's own order history.
type Order struct {
	ID            string        `json:"id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     string        `json:"createdAt"`
	Customer      Customer      `json:"customer"`
	Items         []Item        `json:"items"`
	Total         float64       `json:"total"`
	Notes         string        `json:"notes,omitempty"`
}

// NormalizeOrder builds an Order from a loosely typed payload. Orders without an id are rejected.
func NormalizeOrder(raw map[string]any) (Order, bool) {
	id := normalization.AsString(raw["order_id"])
	if id == "" {
		id = normalization.AsString(raw["id"])
	}
	if id == "" {
		return Order{}, false
	}

	order := Order{
		ID:            id,
		Status:        Status(strings.ToLower(normalization.AsString(raw["order_status"]))),
		PaymentStatus: PaymentStatus(strings.ToLower(normalization.AsString(raw["payment_status"]))),
		CreatedAt:     normalization.AsString(raw["created_at"]),
		Total:         normalization.AsFloat64(raw["total_price"]),
		Notes:         normalization.AsString(raw["order_notes"]),
		Customer: Customer{
			ID:    normalization.NestedString(raw, "user", "id"),
			Name:  normalization.NestedString(raw, "user", "name"),
			Email: normalization.NestedString(raw, "user", "email"),
		},
	}
	if order.Status == "" {
		order.Status = Status(strings.ToLower(normalization.AsString(raw["status"])))
	}

	for _, entry := range normalization.AsInterfaceSlice(raw["items"]) {
		item := normalization.AsMap(entry)
		if item == nil {
			continue
		}
		order.Items = append(order.Items, Item{
			BookID:     normalization.AsString(item["book_id"]),
			BookName:   normalization.AsString(item["book_name"]),
			Quantity:   normalization.AsInt(item["quantity"]),
			Price:      normalization.AsFloat64(item["price"]),
			CoverImage: imageReference(item["book_image"]),
		})
	}
	return order, true
}

// NormalizeOrders keeps the normalizable entries of records.
func NormalizeOrders(records []map[string]any) []Order {
	orders := make([]Order, 0, len(records))
	for _, raw := range records {
		if order, ok := NormalizeOrder(raw); ok {
			orders = append(orders, order)
		}
	}
	return orders
}

// SearchFields returns the text the orders search box matches against.
func (o Order) SearchFields() []string {
	fields := make([]string, 0, 3+len(o.Items))
	fields = append(fields, o.ID, o.Customer.Name, o.Customer.Email)
	for _, item := range o.Items {
		fields = append(fields, item.BookName)
	}
	return fields
}

func imageReference(value any) string {
	if obj := normalization.AsMap(value); obj != nil {
		return normalization.AsString(obj["url"])
	}
	return normalization.AsString(value)
}
