// Package store provides storage abstraction for trained model snapshots.
//
// Store is the interface for reading and writing immutable snapshot blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory, for testing
//   - LocalStore: Local filesystem with atomic writes
//   - minio.Store: S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error         // Atomic write
//	    Get(ctx, name) ([]byte, error)     // Read whole blob
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package store
