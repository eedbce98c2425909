// Package blobstore provides storage abstraction for serialized documents.
//
// BlobStore is the interface for reading and writing named blobs. Each
// document is one blob; names are slash separated and relative.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap reads and atomic renames
//   - MemoryStore: In-process map, for tests
//   - CachingStore: LRU cache of whole blobs in front of another store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// ReadAll and View read a whole document from any store, taking the
// zero-copy path when the blob implements Mappable.
package blobstore
