// Package snapshot persists a built index to durable storage and loads it
// back without re-parsing the source table.
//
// A snapshot is a single self-describing binary container: a fixed header
// (magic, format version, compression, codec name, record count) followed by
// the codec-encoded record payload and a CRC32 checksum. Readers select the
// codec from the header, so a snapshot written with one codec loads under a
// process configured with another.
//
// # Stores
//
//   - FileStore: local file, written atomically (temp file + rename)
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 object, streamed through a parallel uploader
//
// A Store holds at most one snapshot. ModTime reports the snapshot's last
// modification time and ErrNotExist when nothing has been written yet; the
// caller compares it against the source table's modification time to decide
// between loading and rebuilding.
package snapshot
