package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/docval/value"
)

// Compression defines the compression algorithm used.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD indicates ZSTD compression (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

// String returns the name used in codec names.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression returns the Compression named s.
func ParseCompression(s string) (Compression, bool) {
	switch s {
	case "none", "":
		return CompressionNone, true
	case "lz4":
		return CompressionLZ4, true
	case "zstd":
		return CompressionZSTD, true
	default:
		return 0, false
	}
}

// ErrCorruptFrame is returned when a compressed frame cannot be decoded.
var ErrCorruptFrame = errors.New("codec: corrupt compressed frame")

// DefaultMaxDecodedSize bounds the declared size of a compressed payload.
const DefaultMaxDecodedSize = 256 << 20

// frameHeaderSize is [algo u8][uncompressed size u32 LE].
const frameHeaderSize = 5

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

// Compressed wraps another codec and compresses its output.
//
// Frame format: [algo u8][uncompressed size u32 LE][payload]. The algorithm
// byte is recorded per frame, so a Compressed codec decodes frames written
// with any algorithm. Payloads that do not shrink are stored uncompressed.
type Compressed struct {
	Inner       Codec
	Compression Compression
	// MaxDecodedSize overrides DefaultMaxDecodedSize when positive.
	MaxDecodedSize int
}

// Marshal encodes v with the inner codec and compresses the result.
func (c Compressed) Marshal(v value.Value) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	return Compress(raw, c.Compression)
}

// Unmarshal decompresses data and decodes it with the inner codec.
func (c Compressed) Unmarshal(data []byte) (value.Value, error) {
	limit := c.MaxDecodedSize
	if limit <= 0 {
		limit = DefaultMaxDecodedSize
	}
	raw, err := decompress(data, limit)
	if err != nil {
		return value.Value{}, err
	}
	return c.inner().Unmarshal(raw)
}

// Name returns the inner codec name with a "+<algo>" suffix.
func (c Compressed) Name() string {
	return c.inner().Name() + "+" + c.Compression.String()
}

func (c Compressed) inner() Codec {
	if c.Inner == nil {
		return Default
	}
	return c.Inner
}

// Compress frames data with the given algorithm.
func Compress(data []byte, comp Compression) ([]byte, error) {
	if uint64(len(data)) > 1<<32-1 {
		return nil, fmt.Errorf("codec: payload of %d bytes is too large to frame", len(data))
	}

	var payload []byte
	switch comp {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		payload = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		payload = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("codec: unknown compression %d", comp)
	}

	// If compression doesn't help, store uncompressed
	if comp == CompressionNone || len(payload) == 0 || len(payload) >= len(data) {
		comp = CompressionNone
		payload = data
	}

	out := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	out[0] = byte(comp)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	return append(out, payload...), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	return decompress(data, DefaultMaxDecodedSize)
}

func decompress(data []byte, limit int) ([]byte, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: frame too small for header", ErrCorruptFrame)
	}
	comp := Compression(data[0])
	size := binary.LittleEndian.Uint32(data[1:])
	payload := data[frameHeaderSize:]
	if uint64(size) > uint64(limit) {
		return nil, fmt.Errorf("%w: declared size %d exceeds limit %d", ErrCorruptFrame, size, limit)
	}

	switch comp {
	case CompressionNone:
		if uint32(len(payload)) != size {
			return nil, fmt.Errorf("%w: stored size mismatch", ErrCorruptFrame)
		}
		return payload, nil

	case CompressionLZ4:
		result := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
		}
		if uint32(len(decoded)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptFrame, comp)
	}
}
