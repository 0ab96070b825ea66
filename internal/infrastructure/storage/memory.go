package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in memory and hands out fake URLs. It is
// used in tests and local runs without S3.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]storedObject),
	}
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = storedObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

// GenerateDownloadURL returns a fake URL for an uploaded object
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}

	expiresAt := time.Now().Add(expiresIn)
	u := s.BaseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return u, expiresAt, nil
}

// Object returns the stored bytes and content type
func (s *MemoryObjectStorage) Object(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}

var _ ObjectStore = (*MemoryObjectStorage)(nil)
