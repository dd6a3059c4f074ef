// Package csvgo provides memory-bounded random access into large, immutable
// delimited-text tables.
//
// Instead of importing a table into a database, csvgo keeps a small partial
// record per row in memory (a few indexed columns plus the row's byte
// offset) and fetches the full row from the source on demand. The table is
// read once at build time; afterwards lookups are pure memory operations and
// each fetch is a single positioned read.
//
// # Quick Start
//
// Define a partial record carrying the columns to keep resident and the
// row's offset:
//
//	type city struct {
//	    ID     uint64
//	    Name   string
//	    Off    uint32
//	}
//
//	func (c city) Offset() uint32 { return c.Off }
//
//	decode := func(line string, off uint32) (city, error) {
//	    id, name, err := parseIDName(line) // caller-defined column parsing
//	    return city{ID: id, Name: name, Off: off}, err
//	}
//
// Build, look up, fetch:
//
//	ctx := context.Background()
//	ix, err := csvgo.New(ctx, "cities.csv", decode)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rec, ok := csvgo.Find(ix, uint64(42), func(c city) uint64 { return c.ID })
//	if ok {
//	    full, err := csvgo.FullRecord(ctx, ix, rec, parseFullRow)
//	    ...
//	}
//
// Find requires the table (and hence the records) to be sorted ascending by
// the lookup key; this is the caller's contract and is not checked.
//
// # Snapshots
//
// Building scans the whole table. For tables that rarely change, a snapshot
// caches the resident records and is reused as long as it is strictly newer
// than the source:
//
//	ix, err := csvgo.FromSnapshot(ctx, "cities.csv", "cities.snap", decode,
//	    csvgo.WithCompression(snapshot.CompressionZSTD))
//
// Snapshots are self-describing (codec, compression and checksum live in the
// header) and are written atomically. Stores besides the local filesystem
// are available in the snapshot package, including S3.
//
// # Key Features
//
//   - Generic offset width (uint8 to uint64) to size the resident index
//   - Streaming one-pass builds over any source (file, mmap, memory, S3, MinIO)
//   - Binary-search lookups with zero allocation
//   - Concurrent lazy fetches over independent positioned reads
//   - Self-describing snapshots (JSON, go-json or msgpack; lz4/zstd compression)
//   - Roaring-bitmap row selections with bounded-concurrency batch fetch
//   - Optional fsnotify-driven live rebuild (OpenLive)
//   - Optional fetch concurrency and I/O throughput gating (resource package)
package csvgo
