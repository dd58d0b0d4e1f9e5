package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	books "bookshelfWs/internal/modules/books/domain"
	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/modules/listing/domain"
	users "bookshelfWs/internal/modules/users/domain"
)

// SellerRequestResult is the caller's seller application. Request is nil when the caller never
// applied; Notice is set once the application was decided.
type SellerRequestResult struct {
	Request *users.SellerRequest `json:"request"`
	Notice  *domain.Notice       `json:"notice,omitempty"`
}

// AccountUseCase serves the signed-in user's seller application status and the category list
// used by the publish form.
type AccountUseCase struct {
	browse *BrowseUseCase
	client port.AccountClient
}

func NewAccountUseCase(browse *BrowseUseCase, client port.AccountClient) *AccountUseCase {
	return &AccountUseCase{browse: browse, client: client}
}

// SellerRequest reports the caller's application. A decision is also pushed to the session's
// open screens as a notice.
func (uc *AccountUseCase) SellerRequest(ctx context.Context, token string) (*SellerRequestResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrLoginRequired
	}
	sess, err := uc.browse.Authenticate(token)
	if err != nil {
		return nil, err
	}
	raw, err := uc.client.SellerRequest(ctx, sess.State.Token())
	if errors.Is(err, port.ErrNotFound) {
		return &SellerRequestResult{}, nil
	}
	if err != nil {
		slog.Warn("seller request lookup failed", slog.String("sessionId", sess.ID()), slog.Any("error", err))
		return nil, fmt.Errorf("seller request: %w", err)
	}
	req, ok := users.NormalizeSellerRequest(raw)
	if !ok {
		return &SellerRequestResult{}, nil
	}

	result := &SellerRequestResult{Request: &req}
	if !req.Decided() {
		return result, nil
	}
	notice := sellerDecisionNotice(req)
	result.Notice = &notice
	for _, name := range sess.Screens() {
		uc.browse.Notify(ctx, sess, name, notice)
	}
	slog.Info("seller request decided", slog.String("sessionId", sess.ID()), slog.String("status", string(req.Status)))
	return result, nil
}

func sellerDecisionNotice(req users.SellerRequest) domain.Notice {
	if req.Status == users.SellerRequestApproved {
		return domain.Success("Seller request approved. Log out and sign in again to use your seller role")
	}
	reason := req.RejectionNote
	if reason == "" {
		reason = "No reason provided"
	}
	return domain.Notice{Level: domain.NoticeInfo, Text: "Seller request rejected. Reason: " + reason}
}

// Categories lists the categories a listing may be filed under.
func (uc *AccountUseCase) Categories(ctx context.Context) ([]books.Category, error) {
	records, err := uc.client.Categories(ctx)
	if err != nil {
		slog.Warn("category lookup failed", slog.String("category", Categorize(err)), slog.Any("error", err))
		return nil, fmt.Errorf("categories: %w", err)
	}
	return books.NormalizeCategories(records), nil
}
