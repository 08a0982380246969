package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the block compression algorithm.
type Type uint8

const (
	// None stores the block as-is.
	None Type = 0
	// LZ4 is fast block compression, the default for cache entries.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio on cold entries.
	ZSTD Type = 2
)

// String returns the stable name of the compression type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType maps a stable name back to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

var (
	// ErrUnknownType is returned for an unsupported compression type.
	ErrUnknownType = errors.New("unknown compression type")
	// ErrCorrupt is returned when a block header or body is malformed.
	ErrCorrupt = errors.New("corrupt compressed block")
)

// headerSize is [uncompressed uint64][compressed uint64].
// A compressed size of 0 means the body is stored raw.
const headerSize = 16

// maxDecodedSize bounds allocations driven by an untrusted header.
const maxDecodedSize = 1 << 36

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// Encode compresses data with t and frames it with a size header.
// If compression does not shrink the data below 90%, the raw bytes are framed instead.
func Encode(data []byte, t Type) ([]byte, error) {
	var compressed []byte
	var err error

	switch t {
	case None:
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		compressed, err = encodeZSTD(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint64(out[0:], uint64(len(data)))
		binary.LittleEndian.PutUint64(out[8:], 0)
		copy(out[headerSize:], data)
		return out, nil
	}

	out := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint64(out[0:], uint64(len(data)))
	binary.LittleEndian.PutUint64(out[8:], uint64(len(compressed)))
	copy(out[headerSize:], compressed)
	return out, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return buf[:n], nil
}

func encodeZSTD(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

// Decode reverses Encode. t must match the type used to encode.
func Decode(block []byte, t Type) ([]byte, error) {
	if len(block) < headerSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	rawSize := binary.LittleEndian.Uint64(block[0:])
	compSize := binary.LittleEndian.Uint64(block[8:])
	body := block[headerSize:]

	if rawSize > maxDecodedSize {
		return nil, fmt.Errorf("%w: declared size %d too large", ErrCorrupt, rawSize)
	}

	if compSize == 0 {
		if uint64(len(body)) != rawSize {
			return nil, fmt.Errorf("%w: raw body size mismatch", ErrCorrupt)
		}
		return body, nil
	}

	if uint64(len(body)) != compSize {
		return nil, fmt.Errorf("%w: compressed body size mismatch", ErrCorrupt)
	}

	switch t {
	case LZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(n) != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(body, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(len(out)) != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}
