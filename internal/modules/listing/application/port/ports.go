package port

import (
	"context"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/domain"
)

// CollectionFetcher loads the raw records behind a screen from the REST API.
// A payload that is not a recognizable collection yields ErrMalformedResponse.
type CollectionFetcher interface {
	FetchCollection(ctx context.Context, token, screen string) ([]map[string]any, error)
}

// ItemMutator issues the single backend request behind a mutation.
type ItemMutator interface {
	Delete(ctx context.Context, token, screen, id string) error
	Update(ctx context.Context, token, screen, id, field, value string) error
}

// Media is an image about to be uploaded to the media host.
type Media struct {
	Filename string
	Content  []byte
	Preset   string
}

// UploadedMedia is what the media host returns. Only URL is persisted.
type UploadedMedia struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// MediaUploader uploads images to the hosted media service.
type MediaUploader interface {
	Upload(ctx context.Context, media Media) (*UploadedMedia, error)
}

// ListingPublisher posts a seller listing to the catalog.
type ListingPublisher interface {
	Publish(ctx context.Context, token string, listing books.Listing) (map[string]any, error)
}

// CartClient adds books to the authenticated user's cart. It returns the cart count the
// backend reports, or zero when the response carries none.
type CartClient interface {
	AddToCart(ctx context.Context, token, bookID string, quantity int) (int, error)
}

// AccountClient reads the signed-in user's seller application and the category list a seller
// publishes into. SellerRequest returns ErrNotFound when the user never applied.
type AccountClient interface {
	SellerRequest(ctx context.Context, token string) (map[string]any, error)
	Categories(ctx context.Context) ([]map[string]any, error)
}

// Broadcaster pushes messages to websocket clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler handles broker events for one topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}

// Metrics records use case outcomes. Outcomes are "ok" or an error category.
type Metrics interface {
	ObserveFetch(screen, outcome string)
	ObserveMutation(screen, action, outcome string)
	ObserveUpload(outcome string)
	SetOpenSessions(count int)
}
