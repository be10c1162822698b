package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// AllowedImageTypes are the content types accepted for uploaded images.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/svg+xml"}

// File describes a stored upload.
type File struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader validates uploads and writes them to a Store.
type Uploader struct {
	store    Store
	maxBytes int64
	allowed  []string
	logger   *slog.Logger
}

// NewUploader creates an Uploader accepting files up to maxBytes whose
// sniffed content type is one of allowed.
func NewUploader(store Store, maxBytes int64, logger *slog.Logger, allowed ...string) *Uploader {
	if store == nil {
		panic("storage.NewUploader: store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(allowed) == 0 {
		allowed = AllowedImageTypes
	}
	return &Uploader{store: store, maxBytes: maxBytes, allowed: allowed, logger: logger}
}

// MaxBytes is the size limit of one upload.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Save stores r at key, replacing the previous object. The content type is
// detected from the bytes; the name or header the client sent is ignored.
// The returned URL carries a version parameter so clients do not show a
// cached copy of the replaced object.
func (u *Uploader) Save(ctx context.Context, key string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, "failed to read upload", err)
	}
	if len(data) == 0 {
		return nil, domain.Invalid("file is empty")
	}
	if int64(len(data)) > u.maxBytes {
		return nil, domain.Invalid(fmt.Sprintf("file exceeds %d bytes", u.maxBytes))
	}

	mt := mimetype.Detect(data)
	contentType := ""
	for _, allowed := range u.allowed {
		if mt.Is(allowed) {
			contentType = allowed
			break
		}
	}
	if contentType == "" {
		return nil, domain.Invalid("unsupported file type " + mt.String())
	}

	if err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to store file", err)
	}
	u.logger.InfoContext(ctx, "file stored",
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.Int("size", len(data)),
	)
	return &File{
		URL:         u.store.URL(key) + "?v=" + uuid.NewString(),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
