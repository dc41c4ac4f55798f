package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/spacemap/pspart/errs"
	"github.com/spacemap/pspart/internal/hash"
	"github.com/spacemap/pspart/search"
)

const (
	// magicV1 identifies version 1 of the snapshot format.
	magicV1 uint16 = 0xEC10

	// headerSize is the fixed snapshot header size in bytes:
	// magic(2) + version(1) + flag(1) + dim(2) + regions(2) +
	// payloadLen(4) + rawLen(4) + checksum(8).
	headerSize = 24

	// maxRegionCount and maxLabelLength bound the uint16 fields.
	maxRegionCount = math.MaxUint16
	maxLabelLength = math.MaxUint16
)

// Snapshot is a decoded run snapshot.
type Snapshot struct {
	// Dim is the parameter space dimensionality.
	Dim int
	// Regions holds one entry per stored region, in stored order.
	Regions []RegionSnapshot
}

// RegionSnapshot is one region as stored on disk. Cov is dense row-major,
// Chain is row-per-point, matching the search result shape.
type RegionSnapshot struct {
	// ID is the xxHash64 of Label, usable as a compact region key.
	ID    uint64
	Label string

	Chain [][]float64
	Mean  []float64
	Cov   [][]float64

	Samples      int
	LogVolume    float64
	VolumeTrials int
	VolumeHits   int
}

// Option configures snapshot encoding.
type Option func(*encoderConfig) error

type encoderConfig struct {
	compression Compression
}

// WithCompression selects the payload compression. Default is
// CompressionNone.
func WithCompression(c Compression) Option {
	return func(cfg *encoderConfig) error {
		if _, err := newCodec(c); err != nil {
			return err
		}
		cfg.compression = c

		return nil
	}
}

// Encode serializes a finished run. The label function renders each pattern
// as a string; labels should be distinct per pattern or decoded regions
// become indistinguishable.
func Encode[P comparable](res *search.Result[P], label func(P) string, opts ...Option) ([]byte, error) {
	if res == nil || len(res.Regions) == 0 {
		return nil, errors.New("nothing to encode: result has no regions")
	}
	if label == nil {
		return nil, errors.New("label function must not be nil")
	}
	if len(res.Regions) > maxRegionCount {
		return nil, fmt.Errorf("too many regions to encode: %d", len(res.Regions))
	}

	cfg := encoderConfig{compression: CompressionNone}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	dim := len(res.Regions[0].Mean)
	if dim == 0 || dim > math.MaxUint16 {
		return nil, fmt.Errorf("dimensionality %d not encodable", dim)
	}
	payload, err := encodePayload(res, label, dim)
	if err != nil {
		return nil, err
	}

	codec, err := newCodec(cfg.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("payload compression failed: %w", err)
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = binary.LittleEndian.AppendUint16(out, magicV1)
	out = append(out, 1, byte(cfg.compression))
	out = binary.LittleEndian.AppendUint16(out, uint16(dim))
	out = binary.LittleEndian.AppendUint16(out, uint16(len(res.Regions)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.LittleEndian.AppendUint64(out, hash.Sum(compressed))
	out = append(out, compressed...)

	return out, nil
}

func encodePayload[P comparable](res *search.Result[P], label func(P) string, dim int) ([]byte, error) {
	var buf []byte

	for i := range res.Regions {
		reg := &res.Regions[i]
		if len(reg.Mean) != dim {
			return nil, fmt.Errorf("region %d has dimensionality %d, expected %d", i, len(reg.Mean), dim)
		}
		if reg.Cov == nil {
			return nil, fmt.Errorf("region %d has no covariance", i)
		}

		name := label(reg.Pattern)
		if len(name) > maxLabelLength {
			return nil, fmt.Errorf("region %d label exceeds %d bytes", i, maxLabelLength)
		}

		buf = binary.LittleEndian.AppendUint64(buf, hash.ID(name))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(name)))
		buf = append(buf, name...)

		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(reg.Chain)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(reg.Samples))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(reg.VolumeTrials))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(reg.VolumeHits))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(reg.LogVolume))

		for _, v := range reg.Mean {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
		for r := range dim {
			for c := range dim {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(reg.Cov.At(r, c)))
			}
		}

		// Chain in columnar layout: one run of values per dimension.
		// Coordinates of the same dimension sit together, which compresses
		// far better than interleaved points.
		for d := range dim {
			for _, point := range reg.Chain {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(point[d]))
			}
		}
	}

	return buf, nil
}

// Decode parses snapshot data produced by Encode, verifying the magic,
// version and payload checksum.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, errs.ErrTruncatedSnapshot
	}
	if binary.LittleEndian.Uint16(data[0:2]) != magicV1 {
		return nil, errs.ErrInvalidMagic
	}
	if data[2] != 1 {
		return nil, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, data[2])
	}

	compression := Compression(data[3])
	dim := int(binary.LittleEndian.Uint16(data[4:6]))
	regionCount := int(binary.LittleEndian.Uint16(data[6:8]))
	payloadLen := int(binary.LittleEndian.Uint32(data[8:12]))
	rawLen := int(binary.LittleEndian.Uint32(data[12:16]))
	checksum := binary.LittleEndian.Uint64(data[16:24])

	if len(data) < headerSize+payloadLen {
		return nil, errs.ErrTruncatedSnapshot
	}
	compressed := data[headerSize : headerSize+payloadLen]
	if hash.Sum(compressed) != checksum {
		return nil, errs.ErrChecksumMismatch
	}

	codec, err := newCodec(compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(compressed, rawLen)
	if err != nil {
		return nil, fmt.Errorf("payload decompression failed: %w", err)
	}
	if len(payload) != rawLen {
		return nil, errs.ErrTruncatedSnapshot
	}

	snap := &Snapshot{
		Dim:     dim,
		Regions: make([]RegionSnapshot, 0, regionCount),
	}

	cur := cursor{data: payload}
	for range regionCount {
		reg, err := decodeRegion(&cur, dim)
		if err != nil {
			return nil, err
		}
		snap.Regions = append(snap.Regions, reg)
	}
	if !cur.done() {
		return nil, fmt.Errorf("trailing bytes after last region: %d", cur.remaining())
	}

	return snap, nil
}

func decodeRegion(cur *cursor, dim int) (RegionSnapshot, error) {
	var reg RegionSnapshot

	reg.ID = cur.u64()
	labelLen := int(cur.u16())
	reg.Label = string(cur.bytes(labelLen))

	chainLen := int(cur.u32())
	reg.Samples = int(cur.u32())
	reg.VolumeTrials = int(cur.u32())
	reg.VolumeHits = int(cur.u32())
	reg.LogVolume = cur.f64()

	reg.Mean = make([]float64, dim)
	for i := range reg.Mean {
		reg.Mean[i] = cur.f64()
	}

	reg.Cov = make([][]float64, dim)
	for r := range reg.Cov {
		reg.Cov[r] = make([]float64, dim)
		for c := range reg.Cov[r] {
			reg.Cov[r][c] = cur.f64()
		}
	}

	if cur.err == nil && chainLen*dim*8 > cur.remaining() {
		return reg, errs.ErrTruncatedSnapshot
	}
	reg.Chain = make([][]float64, chainLen)
	for i := range reg.Chain {
		reg.Chain[i] = make([]float64, dim)
	}
	for d := range dim {
		for i := range reg.Chain {
			reg.Chain[i][d] = cur.f64()
		}
	}

	if cur.err != nil {
		return reg, cur.err
	}

	return reg, nil
}

// cursor is a bounds-checked little-endian reader over the decompressed
// payload. The first out-of-range read latches err and subsequent reads
// return zero values.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) bytes(n int) []byte {
	if c.err != nil || n < 0 || c.off+n > len(c.data) {
		if c.err == nil {
			c.err = errs.ErrTruncatedSnapshot
		}
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n

	return b
}

func (c *cursor) u16() uint16 {
	b := c.bytes(2)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) u32() uint32 {
	b := c.bytes(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (c *cursor) u64() uint64 {
	b := c.bytes(8)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

func (c *cursor) f64() float64 {
	return math.Float64frombits(c.u64())
}

func (c *cursor) done() bool {
	return c.err == nil && c.off == len(c.data)
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}
