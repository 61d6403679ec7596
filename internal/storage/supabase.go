package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	storagego "github.com/supabase-community/storage-go"
)

// SupabaseOptions configures a Supabase Storage backend.
type SupabaseOptions struct {
	URL        string
	ServiceKey string
	Bucket     string
}

// SupabaseStore stores objects in a public Supabase Storage bucket.
type SupabaseStore struct {
	client  *storagego.Client
	bucket  string
	baseURL string
}

func NewSupabaseStore(opts SupabaseOptions) (*SupabaseStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if baseURL == "" || strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("storage: supabase url and bucket are required")
	}
	return &SupabaseStore{
		client:  storagego.NewClient(baseURL+"/storage/v1", opts.ServiceKey, nil),
		bucket:  opts.Bucket,
		baseURL: baseURL,
	}, nil
}

// The storage-go client has no context support; ctx is only checked up front.

func (s *SupabaseStore) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := false
	if _, err := s.client.UploadFile(s.bucket, key, body, storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("supabase upload %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *SupabaseStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("supabase download %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SupabaseStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("supabase remove %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) publicURL(key string) string {
	return joinURL(s.baseURL, "storage/v1/object/public", s.bucket, key)
}
