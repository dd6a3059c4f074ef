// Package source abstracts where an indexed table's bytes live.
//
// A Source is named, re-openable, and read-only: the index build streams it
// once from the start, and every full-record fetch opens an independent
// positioned read at a stored byte offset. ModTime feeds snapshot staleness
// checks.
//
// # Built-in Implementations
//
//   - File: plain local file, one open (+seek) per read
//   - Mapped: memory-mapped local file, reads served from the mapping
//   - Memory: in-memory bytes, for tests
//   - s3.Source: Amazon S3 object with HTTP range reads
//   - minio.Source: MinIO / S3-compatible object storage
//
// Implementations must tolerate any number of concurrent readers; each
// returned ReadCloser is independent and owned by its caller.
package source
