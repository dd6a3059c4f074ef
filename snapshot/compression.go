package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the payload compression algorithm.
type CompressionType uint8

const (
	// CompressionNone stores the payload verbatim.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast, modest ratio).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD compression (slower, better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Compressed payloads carry an 8-byte frame:
// [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 marks an incompressible payload stored verbatim.
const frameHeaderSize = 8

// compressPayload compresses data per the compression flag.
// With CompressionNone the payload is returned unframed and unchanged.
func compressPayload(data []byte, compression CompressionType) ([]byte, error) {
	if compression == CompressionNone || len(data) == 0 {
		return data, nil
	}

	var compressed []byte
	var err error

	switch compression {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed, err = compressZSTD(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}

	if err != nil {
		return nil, err
	}

	// If compression doesn't help (ratio > 0.9), store verbatim
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, frameHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[frameHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, frameHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[frameHeaderSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressPayload reverses compressPayload.
func decompressPayload(payload []byte, compression CompressionType) ([]byte, error) {
	if compression == CompressionNone || len(payload) == 0 {
		return payload, nil
	}
	if len(payload) < frameHeaderSize {
		return nil, errors.New("payload too small for compression frame")
	}

	uncompressedSize := binary.LittleEndian.Uint32(payload[0:])
	compressedSize := binary.LittleEndian.Uint32(payload[4:])

	if compressedSize == 0 {
		// Verbatim payload
		if uint64(len(payload)) < frameHeaderSize+uint64(uncompressedSize) {
			return nil, errors.New("payload shorter than frame declares")
		}
		return payload[frameHeaderSize : frameHeaderSize+uncompressedSize], nil
	}

	if uint64(len(payload)) < frameHeaderSize+uint64(compressedSize) {
		return nil, errors.New("compressed payload shorter than frame declares")
	}
	compressedData := payload[frameHeaderSize : frameHeaderSize+compressedSize]

	switch compression {
	case CompressionLZ4:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressedData, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}
}
