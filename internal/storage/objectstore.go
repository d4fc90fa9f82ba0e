// Package storage hosts rendered documents and remembers their public links.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sanctified-studios/studio/internal/shared"
)

// Config configures the object store client.
type Config struct {
	BaseURL    string
	Bucket     string
	APIKey     string
	HTTPClient *http.Client
}

// ObjectStore uploads documents to a Supabase-compatible storage API and hands
// back their public URL.
type ObjectStore struct {
	baseURL    string
	bucket     string
	apiKey     string
	httpClient *http.Client
}

// NewObjectStore constructs the client.
func NewObjectStore(cfg Config) *ObjectStore {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ObjectStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucket:     cfg.Bucket,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Enabled reports whether a storage endpoint is configured.
func (s *ObjectStore) Enabled() bool {
	return s != nil && s.baseURL != "" && s.bucket != ""
}

// Upload stores data under name, replacing any previous object, and returns the
// public link. Failures are UploadError.
func (s *ObjectStore) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", shared.UploadError{Err: fmt.Errorf("storage not configured")}
	}
	object := url.PathEscape(name)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), object)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", shared.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Cache-Control", "no-cache")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", shared.UploadError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", shared.UploadError{Err: fmt.Errorf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))}
	}
	return s.PublicURL(name), nil
}

// PublicURL is the fetchable link for an object in a public bucket.
func (s *ObjectStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(name))
}
