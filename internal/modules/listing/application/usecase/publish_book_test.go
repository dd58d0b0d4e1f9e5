package usecase

import (
	"context"
	"errors"
	"testing"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/shared/session"
)

func validListing() books.ListingInput {
	return books.ListingInput{
		Name:         "The Road",
		Author:       "Cormac McCarthy",
		CategoryName: "Fiction",
		Price:        "12.499",
		Stock:        "4",
	}
}

func TestPublishBookUploadsCoverThenPosts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seller, _ := h.browse.Authenticate("seller-token")
	uploader := &fakeUploader{}
	publisher := &fakePublisher{}
	uc := NewPublishBookUseCase(uploader, publisher, nil)

	out, err := uc.Execute(context.Background(), seller.State, PublishBookInput{
		Listing: validListing(),
		Cover:   &port.Media{Filename: "road.png", Content: []byte("\x89PNG")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uploader.uploads) != 1 || len(publisher.published) != 1 {
		t.Fatalf("expected one upload and one post, got %d/%d", len(uploader.uploads), len(publisher.published))
	}
	posted := publisher.published[0]
	if posted.CoverImage != "https://media.example/road.png" || posted.Price.String() != "12.5" {
		t.Fatalf("unexpected listing %#v", posted)
	}
	if out.Record["id"] != "b-1" {
		t.Fatalf("unexpected record %#v", out.Record)
	}
}

func TestPublishBookRejectsBeforeUpload(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seller, _ := h.browse.Authenticate("seller-token")
	viewer, _ := h.browse.Authenticate("viewer-token")
	cover := &port.Media{Filename: "road.png", Content: []byte("\x89PNG")}

	invalid := validListing()
	invalid.Price = "-3"

	tests := []struct {
		name  string
		actor session.Reader
		input PublishBookInput
		want  error
	}{
		{name: "invalid price", actor: seller.State, input: PublishBookInput{Listing: invalid, Cover: cover}, want: books.ErrInvalidListing},
		{name: "missing cover", actor: seller.State, input: PublishBookInput{Listing: validListing()}, want: books.ErrInvalidListing},
		{name: "not a seller", actor: viewer.State, input: PublishBookInput{Listing: validListing(), Cover: cover}, want: ErrPermissionDenied},
		{name: "anonymous", actor: session.FromClaims("", nil), input: PublishBookInput{Listing: validListing(), Cover: cover}, want: ErrLoginRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uploader := &fakeUploader{}
			publisher := &fakePublisher{}
			uc := NewPublishBookUseCase(uploader, publisher, nil)
			if _, err := uc.Execute(context.Background(), tt.actor, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(uploader.uploads) != 0 || len(publisher.published) != 0 {
				t.Fatal("expected nothing to be uploaded or posted")
			}
		})
	}
}

func TestPublishBookUploadFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seller, _ := h.browse.Authenticate("seller-token")
	publisher := &fakePublisher{}
	uc := NewPublishBookUseCase(&fakeUploader{err: errors.New("timeout")}, publisher, nil)

	_, err := uc.Execute(context.Background(), seller.State, PublishBookInput{
		Listing: validListing(),
		Cover:   &port.Media{Filename: "road.png", Content: []byte("\x89PNG")},
	})
	if err == nil || Categorize(err) != CategoryTransport {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatal("listing must not be posted without its cover")
	}
}
