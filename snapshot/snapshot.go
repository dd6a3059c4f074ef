package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/hupe1980/csvgo/codec"
)

var (
	snapshotMagic   = [4]byte{'C', 'S', 'G', '1'}
	snapshotVersion = uint16(1)
)

var (
	// ErrBadMagic is returned when the snapshot does not start with the
	// container magic. The file is not a snapshot (or its head was destroyed).
	ErrBadMagic = errors.New("invalid snapshot magic")
	// ErrVersion is returned for container versions this build cannot read.
	ErrVersion = errors.New("unsupported snapshot version")
	// ErrUnknownCodec is returned when the header names a codec this build
	// does not provide.
	ErrUnknownCodec = errors.New("unknown snapshot codec")
	// ErrUnknownCompression is returned for compression flags this build
	// does not provide.
	ErrUnknownCompression = errors.New("unknown snapshot compression")
	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("snapshot checksum mismatch")
	// ErrPayloadTooLarge is returned when the header declares a payload
	// length that cannot be addressed.
	ErrPayloadTooLarge = errors.New("snapshot payload length exceeds limit")
	// ErrCountMismatch is returned when the decoded record count disagrees
	// with the header.
	ErrCountMismatch = errors.New("snapshot record count mismatch")
)

// Write serializes records through c and writes a complete snapshot
// container to w.
//
// Layout (little-endian):
//
//	magic       [4]byte "CSG1"
//	version     uint16
//	compression uint8
//	codec name  uint8 length + bytes
//	count       uint64
//	payload len uint64
//	payload     codec-encoded records, compressed per the compression flag
//	checksum    uint32 CRC32 (IEEE) of the payload
func Write[T any](w io.Writer, c codec.Codec, compression CompressionType, records []T) error {
	if c == nil {
		c = codec.Default
	}
	name := c.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return fmt.Errorf("invalid codec name %q", name)
	}
	if compression > CompressionZSTD {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}

	encoded, err := c.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot records: %w", err)
	}
	payload, err := compressPayload(encoded, compression)
	if err != nil {
		return fmt.Errorf("failed to compress snapshot payload: %w", err)
	}

	header := make([]byte, 0, len(snapshotMagic)+4+len(name)+16)
	header = append(header, snapshotMagic[:]...)
	var fixed [4]byte
	binary.LittleEndian.PutUint16(fixed[0:2], snapshotVersion)
	fixed[2] = uint8(compression)
	fixed[3] = uint8(len(name))
	header = append(header, fixed[:]...)
	header = append(header, name...)
	var counts [16]byte
	binary.LittleEndian.PutUint64(counts[0:8], uint64(len(records)))
	binary.LittleEndian.PutUint64(counts[8:16], uint64(len(payload)))
	header = append(header, counts[:]...)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write snapshot payload: %w", err)
	}
	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], crc32.ChecksumIEEE(payload))
	if _, err := w.Write(sum[:]); err != nil {
		return fmt.Errorf("failed to write snapshot checksum: %w", err)
	}
	return nil
}

// Read parses a snapshot container from r and decodes its records.
//
// The codec is selected by the name stored in the header, independent of the
// codec the writing process was configured with. Corruption anywhere in the
// container surfaces as an error; Read never returns a partial record slice.
func Read[T any](r io.Reader) ([]T, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, magic[:])
	}

	var fixed [4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	version := binary.LittleEndian.Uint16(fixed[0:2])
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: got %d", ErrVersion, version)
	}
	compression := CompressionType(fixed[2])
	if compression > CompressionZSTD {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}

	nameBuf := make([]byte, int(fixed[3]))
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("failed to read snapshot codec name: %w", err)
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBuf)
	}

	var counts [16]byte
	if _, err := io.ReadFull(r, counts[:]); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	count := binary.LittleEndian.Uint64(counts[0:8])
	payloadLen := binary.LittleEndian.Uint64(counts[8:16])
	if payloadLen > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", ErrPayloadTooLarge, payloadLen)
	}

	payload, err := readPayload(r, int64(payloadLen))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot payload: %w", err)
	}
	var sum [4]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, fmt.Errorf("failed to read snapshot checksum: %w", err)
	}
	want := binary.LittleEndian.Uint32(sum[:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksum, want, got)
	}

	encoded, err := decompressPayload(payload, compression)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot payload: %w", err)
	}
	var records []T
	if err := c.Unmarshal(encoded, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot records: %w", err)
	}
	if uint64(len(records)) != count {
		return nil, fmt.Errorf("%w: header %d, decoded %d", ErrCountMismatch, count, len(records))
	}
	return records, nil
}

// readPayload reads exactly n payload bytes. Growth is driven by the actual
// stream so a corrupt length field fails with a short read instead of a
// giant allocation.
func readPayload(r io.Reader, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
