package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"bookshelfWs/internal/modules/listing/application/port"
	"bookshelfWs/internal/shared/normalization"
)

// DefaultMaxUploadBytes caps cover images at 2 MiB.
const DefaultMaxUploadBytes = 2 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// MediaUploader posts unsigned uploads to an image host (Cloudinary style: multipart "file"
// plus "upload_preset").
type MediaUploader struct {
	http     *resty.Client
	endpoint string
	preset   string
	maxBytes int64
}

func NewMediaUploader(endpoint, preset string, maxBytes int64, timeout time.Duration) *MediaUploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MediaUploader{
		http:     resty.New().SetTimeout(timeoutOrDefault(timeout)).SetHeader("Accept", "application/json"),
		endpoint: strings.TrimSpace(endpoint),
		preset:   strings.TrimSpace(preset),
		maxBytes: maxBytes,
	}
}

// Upload checks size and sniffed content type, then sends the file. Nothing is sent when the
// file is rejected locally.
func (u *MediaUploader) Upload(ctx context.Context, media port.Media) (*port.UploadedMedia, error) {
	if u.endpoint == "" {
		return nil, port.ErrUnsupported
	}
	if err := u.check(media); err != nil {
		return nil, err
	}
	preset := strings.TrimSpace(media.Preset)
	if preset == "" {
		preset = u.preset
	}
	filename := filepath.Base(strings.TrimSpace(media.Filename))
	if filename == "." || filename == "/" || filename == "" {
		filename = "cover"
	}

	req := u.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(media.Content))
	if preset != "" {
		req.SetFormData(map[string]string{"upload_preset": preset})
	}
	resp, err := req.Post(u.endpoint)
	if err != nil {
		slog.Error("media upload request error", slog.String("file", filename), slog.Any("error", err))
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	record := normalization.AsMap(payload)
	uploaded := &port.UploadedMedia{
		URL:      firstNonEmpty(normalization.AsString(record["secure_url"]), normalization.AsString(record["url"])),
		PublicID: normalization.AsString(record["public_id"]),
	}
	if uploaded.URL == "" {
		return nil, fmt.Errorf("%w: upload response carries no url", port.ErrMalformedResponse)
	}
	slog.Info("media uploaded", slog.String("file", filename), slog.String("publicId", uploaded.PublicID), slog.Int("bytes", len(media.Content)))
	return uploaded, nil
}

func (u *MediaUploader) check(media port.Media) error {
	size := int64(len(media.Content))
	if size == 0 {
		return port.Invalid("image file is empty")
	}
	if size > u.maxBytes {
		return port.Invalid("image must be smaller than %d MB", u.maxBytes>>20)
	}
	detected := mimetype.Detect(media.Content)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return port.Invalid("unsupported image type %s (use JPEG, PNG or GIF)", detected.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
