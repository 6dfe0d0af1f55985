package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docforge/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// storedObject is a byte blob addressed by an opaque key
type storedObject struct {
	Key         string `badgerhold:"key"`
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// ObjectStorage implements interfaces.ObjectStorage on the embedded
// store. Production deployments swap in a bucket-backed implementation
// behind the same interface.
type ObjectStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.ObjectStorage = (*ObjectStorage)(nil)

// NewObjectStorage creates a new ObjectStorage instance
func NewObjectStorage(db *BadgerDB, logger arbor.ILogger) *ObjectStorage {
	return &ObjectStorage{db: db, logger: logger}
}

// DownloadBytes returns the stored bytes for a key
func (s *ObjectStorage) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	var obj storedObject
	if err := s.db.Store().Get(key, &obj); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("object %s: not found", key)
		}
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}
	return obj.Data, nil
}

// UploadBytes stores bytes under a key
func (s *ObjectStorage) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}
	obj := storedObject{
		Key:         key,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Store().Upsert(key, obj); err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	s.logger.Trace().
		Str("key", key).
		Int("size", len(data)).
		Str("content_type", contentType).
		Msg("BadgerDB: object stored")
	return nil
}

// Delete removes a stored object. Deleting a missing key is not an error.
func (s *ObjectStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.Store().Delete(key, storedObject{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PresignedDownloadURL returns a pseudo-URL for the embedded store.
// The HTTP layer maps these to real download endpoints.
func (s *ObjectStorage) PresignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var obj storedObject
	if err := s.db.Store().Get(key, &obj); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("object %s: not found", key)
		}
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("badger://objects/%s?expires=%d", key, expires), nil
}
