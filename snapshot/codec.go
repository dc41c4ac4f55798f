package snapshot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of a snapshot.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0x1
	// CompressionZstd uses Zstandard: best ratio, slower. Preferred for
	// archived runs with long chains.
	CompressionZstd Compression = 0x2
	// CompressionS2 uses S2: fast with a moderate ratio.
	CompressionS2 Compression = 0x3
	// CompressionLZ4 uses LZ4 block compression: fastest, lightest ratio.
	CompressionLZ4 Compression = 0x4
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Codec compresses and decompresses snapshot payloads. The decompress side
// receives the exact uncompressed size recorded in the snapshot header, so
// implementations can allocate once.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, size int) ([]byte, error)
}

// newCodec maps a Compression value to its implementation.
func newCodec(c Compression) (Codec, error) {
	switch c {
	case CompressionNone:
		return noopCodec{}, nil
	case CompressionZstd:
		return zstdCodec{}, nil
	case CompressionS2:
		return s2Codec{}, nil
	case CompressionLZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", uint8(c))
	}
}

type noopCodec struct{}

var _ Codec = noopCodec{}

func (noopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noopCodec) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}

type s2Codec struct{}

var _ Codec = s2Codec{}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte, _ int) ([]byte, error) {
	return s2.Decode(nil, data)
}

type lz4Codec struct{}

var _ Codec = lz4Codec{}

// lz4CompressorPool reuses lz4.Compressor instances; the compressor keeps
// internal hash tables that benefit from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		// Incompressible input; store the block as-is. The size header
		// disambiguates on decode.
		return data, nil
	}

	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.New("negative payload size")
	}
	if len(data) == size {
		// Stored uncompressed by Compress above.
		return data, nil
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}
