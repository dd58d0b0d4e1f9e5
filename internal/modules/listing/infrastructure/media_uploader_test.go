package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bookshelfWs/internal/modules/listing/application/port"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestMediaUploaderSendsMultipart(t *testing.T) {
	t.Parallel()

	var preset, filename string
	var content []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		preset = r.FormValue("upload_preset")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		filename = header.Filename
		content, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"secure_url":"https://cdn.example/cover.png","public_id":"covers/abc"}`)
	}))
	defer server.Close()

	uploader := NewMediaUploader(server.URL, "bookshelf", 0, time.Second)
	uploaded, err := uploader.Upload(context.Background(), port.Media{Filename: "../cover.png", Content: pngHeader})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uploaded.URL != "https://cdn.example/cover.png" || uploaded.PublicID != "covers/abc" {
		t.Fatalf("unexpected upload %#v", uploaded)
	}
	if preset != "bookshelf" || filename != "cover.png" || len(content) != len(pngHeader) {
		t.Fatalf("unexpected form preset=%q filename=%q bytes=%d", preset, filename, len(content))
	}
}

func TestMediaUploaderRejectsLocally(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	uploader := NewMediaUploader(server.URL, "bookshelf", 64, time.Second)
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty", content: nil},
		{name: "too large", content: append(append([]byte{}, pngHeader...), make([]byte, 64)...)},
		{name: "not an image", content: []byte("%PDF-1.4 not a cover")},
	}
	for _, tt := range tests {
		_, err := uploader.Upload(context.Background(), port.Media{Filename: "x", Content: tt.content})
		if !errors.Is(err, port.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tt.name, err)
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no upload requests, got %d", hits.Load())
	}
}

func TestMediaUploaderMissingURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"public_id":"x"}`)
	}))
	defer server.Close()

	_, err := NewMediaUploader(server.URL, "", 0, time.Second).Upload(context.Background(), port.Media{Filename: "a.png", Content: pngHeader})
	if !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if !strings.Contains(err.Error(), "no url") {
		t.Fatalf("unexpected error %v", err)
	}
}
