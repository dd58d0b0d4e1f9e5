package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalidListing wraps every validation failure of a seller listing.
var ErrInvalidListing = errors.New("invalid book listing")

var listingValidator = validator.New(validator.WithRequiredStructEnabled())

// ListingInput is the raw seller "add book" form.
type ListingInput struct {
	Name         string `json:"name" validate:"required"`
	Author       string `json:"author" validate:"required"`
	Description  string `json:"description"`
	CategoryName string `json:"category_name" validate:"required"`
	Price        string `json:"price" validate:"required"`
	Stock        string `json:"stock" validate:"required"`
	CoverImage   string `json:"cover_image"`
}

// Listing is a validated seller listing ready to be posted to the backend.
type Listing struct {
	Name         string          `json:"name"`
	Author       string          `json:"author"`
	Description  string          `json:"description"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int64           `json:"stock"`
	CoverImage   string          `json:"cover_image"`
}

// NewListing validates the form. The cover image is checked separately by WithCover because it
// may still have to be uploaded.
func NewListing(input ListingInput) (Listing, error) {
	input = trimListingInput(input)
	if err := listingValidator.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return Listing{}, fmt.Errorf("%w: %s is required", ErrInvalidListing, strings.ToLower(fieldErrs[0].Field()))
		}
		return Listing{}, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}

	price, err := decimal.NewFromString(input.Price)
	if err != nil || !price.IsPositive() {
		return Listing{}, fmt.Errorf("%w: price must be a positive amount", ErrInvalidListing)
	}
	stock, err := decimal.NewFromString(input.Stock)
	if err != nil || stock.IsNegative() || !stock.IsInteger() {
		return Listing{}, fmt.Errorf("%w: stock must be a non-negative whole number", ErrInvalidListing)
	}

	return Listing{
		Name:         input.Name,
		Author:       input.Author,
		Description:  input.Description,
		CategoryName: input.CategoryName,
		Price:        price.Round(2),
		Stock:        stock.IntPart(),
		CoverImage:   input.CoverImage,
	}, nil
}

// WithCover attaches the hosted cover URL.
func (l Listing) WithCover(url string) Listing {
	l.CoverImage = strings.TrimSpace(url)
	return l
}

// Complete reports an error when the listing still lacks its cover.
func (l Listing) Complete() error {
	if l.CoverImage == "" {
		return fmt.Errorf("%w: cover image is required", ErrInvalidListing)
	}
	return nil
}

func trimListingInput(in ListingInput) ListingInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryName = strings.TrimSpace(in.CategoryName)
	in.Price = strings.TrimSpace(in.Price)
	in.Stock = strings.TrimSpace(in.Stock)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	return in
}
