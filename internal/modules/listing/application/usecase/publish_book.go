package usecase

import (
	"context"
	"fmt"
	"log/slog"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/shared/session"
)

// PublishBookInput is a seller listing with an optional cover still to upload.
type PublishBookInput struct {
	Listing books.ListingInput
	Cover   *port.Media
}

// PublishBookOutput carries the backend's record for the new listing.
type PublishBookOutput struct {
	Listing books.Listing
	Record  map[string]any
}

// PublishBookUseCase validates seller listings, uploads covers and posts the listing.
type PublishBookUseCase struct {
	uploader  port.MediaUploader
	publisher port.ListingPublisher
	metrics   port.Metrics
}

func NewPublishBookUseCase(uploader port.MediaUploader, publisher port.ListingPublisher, metrics port.Metrics) *PublishBookUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PublishBookUseCase{uploader: uploader, publisher: publisher, metrics: metrics}
}

// Upload sends media to the media host and returns its public URL.
func (uc *PublishBookUseCase) Upload(ctx context.Context, actor session.Reader, media port.Media) (*port.UploadedMedia, error) {
	if err := authorizeSeller(actor); err != nil {
		return nil, err
	}
	uploaded, err := uc.uploader.Upload(ctx, media)
	uc.metrics.ObserveUpload(outcome(err))
	if err != nil {
		slog.Warn("publish-book upload failed", slog.String("sessionId", actor.ID()), slog.String("file", media.Filename), slog.Any("error", err))
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	slog.Info("publish-book cover uploaded", slog.String("sessionId", actor.ID()), slog.String("publicId", uploaded.PublicID))
	return uploaded, nil
}

// Execute validates the form, uploads the cover when raw bytes were supplied and posts the
// listing. Form errors are reported before anything is uploaded.
func (uc *PublishBookUseCase) Execute(ctx context.Context, actor session.Reader, input PublishBookInput) (*PublishBookOutput, error) {
	if err := authorizeSeller(actor); err != nil {
		return nil, err
	}
	listing, err := books.NewListing(input.Listing)
	if err != nil {
		return nil, err
	}
	if input.Cover != nil && len(input.Cover.Content) > 0 {
		uploaded, err := uc.Upload(ctx, actor, *input.Cover)
		if err != nil {
			return nil, err
		}
		listing = listing.WithCover(uploaded.URL)
	}
	if err := listing.Complete(); err != nil {
		return nil, err
	}

	record, err := uc.publisher.Publish(ctx, actor.Token(), listing)
	if err != nil {
		slog.Warn("publish-book post failed", slog.String("sessionId", actor.ID()), slog.String("name", listing.Name), slog.Any("error", err))
		return nil, fmt.Errorf("publish listing: %w", err)
	}
	slog.Info("publish-book listing created", slog.String("sessionId", actor.ID()), slog.String("name", listing.Name))
	return &PublishBookOutput{Listing: listing, Record: record}, nil
}

func authorizeSeller(actor session.Reader) error {
	if actor == nil || actor.Token() == "" {
		return ErrLoginRequired
	}
	if !actor.HasRole("seller") && !actor.Can(session.PermissionManageBooks) {
		return fmt.Errorf("%w: seller role required", ErrPermissionDenied)
	}
	return nil
}
