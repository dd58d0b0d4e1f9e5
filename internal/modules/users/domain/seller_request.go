package domain

import (
	"strings"

	"bookshelfWs/internal/shared/normalization"
)

// SellerRequestStatus is the moderation state of an application to become a seller.
type SellerRequestStatus string

const (
	SellerRequestPending     SellerRequestStatus = "pending"
	SellerRequestApproved    SellerRequestStatus = "approved"
	SellerRequestDisapproved SellerRequestStatus = "disapproved"
)

// SellerRequest is the signed-in user's latest seller application.
type SellerRequest struct {
	ID            string              `json:"id,omitempty"`
	Status        SellerRequestStatus `json:"status"`
	RejectionNote string              `json:"rejectionNote,omitempty"`
	UpdatedAt     string              `json:"updatedAt,omitempty"`
}

// NormalizeSellerRequest reads a seller application. Records without a status are rejected;
// "rejected" is read as disapproved.
func NormalizeSellerRequest(raw map[string]any) (SellerRequest, bool) {
	status := strings.ToLower(normalization.AsString(raw["status"]))
	if status == "" {
		return SellerRequest{}, false
	}
	if status == "rejected" {
		status = string(SellerRequestDisapproved)
	}
	req := SellerRequest{
		ID:            normalization.AsString(raw["id"]),
		Status:        SellerRequestStatus(status),
		RejectionNote: normalization.AsString(raw["rejection_note"]),
		UpdatedAt:     normalization.AsString(raw["updated_at"]),
	}
	return req, true
}

// Decided reports whether a moderator approved or disapproved the request.
func (r SellerRequest) Decided() bool {
	return r.Status == SellerRequestApproved || r.Status == SellerRequestDisapproved
}
