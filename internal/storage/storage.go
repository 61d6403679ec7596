package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thumbgen/internal/domain"
)

// Backend is an object store that can hold generated images.
type Backend interface {
	// Put stores body under key and returns the public URL of the object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// UploadOptions tunes a single upload.
type UploadOptions struct {
	// Prefix is prepended to the generated object name, e.g. thumbnails/<user>.
	Prefix      string
	ContentType string
}

// UploadResult identifies an uploaded object.
type UploadResult struct {
	Key         string
	URL         string
	ContentType string
}

// Uploader stages image bytes on local disk and streams them to a Backend.
// The staged file is removed on every exit path.
type Uploader struct {
	backend    Backend
	stagingDir string
	logger     zerolog.Logger
	newName    func() string
}

// NewUploader builds an Uploader. An empty stagingDir uses the OS temp dir.
func NewUploader(backend Backend, stagingDir string, logger zerolog.Logger) *Uploader {
	return &Uploader{
		backend:    backend,
		stagingDir: strings.TrimSpace(stagingDir),
		logger:     logger,
		newName:    uuid.NewString,
	}
}

// Upload writes data to a temp file, uploads it and returns the object URL.
func (u *Uploader) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	if u == nil || u.backend == nil {
		return nil, fmt.Errorf("%w: no storage backend configured", domain.ErrUpload)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrUpload)
	}
	contentType := strings.TrimSpace(opts.ContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext := ExtensionFor(contentType)
	key := path.Join(strings.Trim(opts.Prefix, "/"), u.newName()+ext)

	staged, err := u.stage(data, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.logger.Warn().Err(err).Str("path", staged).Msg("storage: failed to remove staged file")
		}
	}()

	f, err := os.Open(staged)
	if err != nil {
		return nil, fmt.Errorf("%w: open staged file: %v", domain.ErrUpload, err)
	}
	defer f.Close()

	url, err := u.backend.Put(ctx, key, f, int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpload, err)
	}

	u.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("storage: uploaded object")
	return &UploadResult{Key: key, URL: url, ContentType: contentType}, nil
}

// Open streams a stored object.
func (u *Uploader) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if u == nil || u.backend == nil {
		return nil, errors.New("storage: no backend configured")
	}
	return u.backend.Open(ctx, key)
}

// Remove deletes a stored object.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	if u == nil || u.backend == nil {
		return errors.New("storage: no backend configured")
	}
	return u.backend.Remove(ctx, key)
}

func (u *Uploader) stage(data []byte, ext string) (string, error) {
	if u.stagingDir != "" {
		if err := os.MkdirAll(u.stagingDir, 0o755); err != nil {
			return "", fmt.Errorf("ensure staging dir: %w", err)
		}
	}
	f, err := os.CreateTemp(u.stagingDir, "thumbnail-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("close staged file: %w", err)
	}
	return name, nil
}

// ExtensionFor maps an image content type to a file extension.
func ExtensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// ContentTypeFor is the inverse of ExtensionFor for stored keys.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}
