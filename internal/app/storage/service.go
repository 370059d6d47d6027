/*
Package storage uploads user images to S3-compatible object storage and validates
the images clients send as base64 data URIs.
*/
package storage

import (
	"context"
	"errors"
)

//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../../mocks/mock_object_store.go -package=mocks

// ErrUnavailable is returned by the store used when object storage is not configured.
var ErrUnavailable = errors.New("object storage is not configured")

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL is the public prefix objects are served from. When empty,
	// URLs are built path-style from the endpoint and bucket.
	S3PublicBaseURL string
}

// ObjectStore defines the public interface for the file storage service.
type ObjectStore interface {
	// Store uploads body under key and returns the public URL of the object.
	Store(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// Delete removes the object specified by the given key.
	Delete(ctx context.Context, key string) error

	// KeyFromURL returns the object key behind a public URL this store produced.
	KeyFromURL(publicURL string) (string, bool)
}

// NewObjectStore is the factory function for ObjectStore.
// Only S3-compatible backends are supported.
func NewObjectStore(ctx context.Context, cfg ServiceConfig) (ObjectStore, error) {
	return newS3Client(ctx, cfg)
}

// Unavailable returns a store that rejects every upload. Image features then fail
// with a storage error while text messaging keeps working.
func Unavailable() ObjectStore {
	return unavailableStore{}
}

type unavailableStore struct{}

func (unavailableStore) Store(context.Context, string, []byte, string) (string, error) {
	return "", ErrUnavailable
}

func (unavailableStore) Delete(context.Context, string) error {
	return ErrUnavailable
}

func (unavailableStore) KeyFromURL(string) (string, bool) {
	return "", false
}
