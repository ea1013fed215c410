// Package storage provides object storage abstractions for schema snapshot
// blobs. Snapshots are small in-memory byte payloads, so the interface works
// on byte slices rather than local files.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUploadFailed       = errors.New("upload failed")
	ErrDownloadFailed     = errors.New("download failed")
	ErrDeleteFailed       = errors.New("delete failed")
)

// ObjectStorage abstracts object storage operations.
// Implementations include S3 and local filesystem for testing.
type ObjectStorage interface {
	// Put writes an object to storage, overwriting any existing object.
	Put(ctx context.Context, objectPath string, data []byte) error

	// Get reads an object from storage.
	// Returns ErrObjectNotFound if the object does not exist.
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Delete removes an object from storage. Deleting a missing object
	// is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ConditionalPut writes only if the precondition is met.
	// etag is the expected ETag of the existing object (empty string for
	// new objects). Used to advance the snapshot CURRENT pointer without
	// clobbering a concurrent writer.
	ConditionalPut(ctx context.Context, objectPath string, data []byte, etag string) error

	// GetETag returns the current ETag of an object, for use as the
	// ConditionalPut precondition. Returns ErrObjectNotFound if the
	// object does not exist.
	GetETag(ctx context.Context, objectPath string) (string, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
