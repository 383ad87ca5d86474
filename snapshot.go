package clustergo

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/clustergo/store"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the codec used for a model snapshot's centroid payload.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD compression (better ratio).
	CompressionZSTD Compression = 2
)

const (
	snapshotMagic   uint32 = 0x434c5347 // "CLSG"
	snapshotVersion uint8  = 1

	// Header: magic u32, version u8, compression u8, k u32, dim u32,
	// iterations u32, converged u8, cost f64.
	snapshotHeaderSize = 4 + 1 + 1 + 4 + 4 + 4 + 1 + 8

	// Payload block header: uncompressed size u32, stored size u32.
	// A stored size of 0 means the payload is stored raw.
	blockHeaderSize = 8
)

type snapshotOptions struct {
	compression Compression
}

// SnapshotOption configures how a model snapshot is written.
type SnapshotOption func(*snapshotOptions)

// WithCompression selects the snapshot payload codec.
// The codec is recorded in the snapshot header, so readers need no
// configuration.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

// SaveToWriter writes a snapshot of the trained model to w.
//
// A snapshot captures the centroids, shape and fit outcome; it does not
// carry the training assignment, so Labels and ClusterMembers return nil
// on a loaded model.
func (m *Model) SaveToWriter(w io.Writer, opts ...SnapshotOption) error {
	o := snapshotOptions{compression: CompressionNone}
	for _, opt := range opts {
		opt(&o)
	}

	header := make([]byte, snapshotHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], snapshotMagic)
	header[4] = snapshotVersion
	header[5] = byte(o.compression)
	binary.LittleEndian.PutUint32(header[6:], uint32(m.k))
	binary.LittleEndian.PutUint32(header[10:], uint32(m.dim))
	binary.LittleEndian.PutUint32(header[14:], uint32(m.iterations))
	if m.converged {
		header[18] = 1
	}
	binary.LittleEndian.PutUint64(header[19:], math.Float64bits(m.Cost()))

	if _, err := w.Write(header); err != nil {
		return err
	}

	payload := make([]byte, len(m.centroids)*4)
	for i, v := range m.centroids {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(v))
	}

	block, err := compressBlock(payload, o.compression)
	if err != nil {
		return fmt.Errorf("compress snapshot payload: %w", err)
	}

	_, err = w.Write(block)
	return err
}

// LoadModelFromReader reads a model snapshot written by SaveToWriter.
func LoadModelFromReader(r io.Reader) (*Model, error) {
	header := make([]byte, snapshotHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrInvalidSnapshot, err)
	}

	if binary.LittleEndian.Uint32(header[0:]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if header[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, header[4])
	}

	compression := Compression(header[5])
	k := int(binary.LittleEndian.Uint32(header[6:]))
	dim := int(binary.LittleEndian.Uint32(header[10:]))
	iterations := int(binary.LittleEndian.Uint32(header[14:]))
	converged := header[18] == 1
	cost := math.Float64frombits(binary.LittleEndian.Uint64(header[19:]))

	if k < 1 || dim < 1 {
		return nil, fmt.Errorf("%w: k=%d dim=%d", ErrInvalidSnapshot, k, dim)
	}

	payload, err := decompressBlock(r, compression, k*dim*4)
	if err != nil {
		return nil, err
	}

	centroids := make([]float32, k*dim)
	for i := range centroids {
		centroids[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}

	var history []float64
	if iterations > 0 {
		history = []float64{cost}
	}

	return &Model{
		k:          k,
		dim:        dim,
		centroids:  centroids,
		history:    history,
		iterations: iterations,
		converged:  converged,
		metrics:    NoopMetricsCollector{},
	}, nil
}

// SaveToStore writes a model snapshot into a blob store under name.
func (m *Model) SaveToStore(ctx context.Context, s store.Store, name string, opts ...SnapshotOption) error {
	var buf bytes.Buffer
	if err := m.SaveToWriter(&buf, opts...); err != nil {
		return err
	}
	return s.Put(ctx, name, buf.Bytes())
}

// LoadModelFromStore reads a model snapshot from a blob store.
func LoadModelFromStore(ctx context.Context, s store.Store, name string) (*Model, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return LoadModelFromReader(bytes.NewReader(data))
}

// compressBlock frames and optionally compresses a payload. If compression
// does not shrink the payload it is stored raw (stored size 0).
func compressBlock(payload []byte, compression Compression) ([]byte, error) {
	var compressed []byte

	switch compression {
	case CompressionNone:
		// Stored raw below.
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, err
		}
		if n > 0 && n < len(payload) {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(payload, nil)
		_ = enc.Close()
		if len(out) < len(payload) {
			compressed = out
		}
	default:
		return nil, fmt.Errorf("unsupported compression: %d", compression)
	}

	if compressed == nil {
		block := make([]byte, blockHeaderSize+len(payload))
		binary.LittleEndian.PutUint32(block[0:], uint32(len(payload)))
		binary.LittleEndian.PutUint32(block[4:], 0) // raw
		copy(block[blockHeaderSize:], payload)
		return block, nil
	}

	block := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(block[4:], uint32(len(compressed)))
	copy(block[blockHeaderSize:], compressed)
	return block, nil
}

// decompressBlock reads one framed payload block from r. The block header's
// sizes are checked against want, the payload size implied by the snapshot
// header, before any payload-sized allocation. Compressed payloads are always
// framed smaller than the original (compressBlock stores raw otherwise).
func decompressBlock(r io.Reader, compression Compression, want int) ([]byte, error) {
	header := make([]byte, blockHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short block header: %w", ErrInvalidSnapshot, err)
	}

	uncompressedSize := binary.LittleEndian.Uint32(header[0:])
	storedSize := binary.LittleEndian.Uint32(header[4:])

	if int(uncompressedSize) != want {
		return nil, fmt.Errorf("%w: payload size %d, want %d", ErrInvalidSnapshot, uncompressedSize, want)
	}
	if storedSize != 0 && int(storedSize) >= want {
		return nil, fmt.Errorf("%w: stored size %d not below payload size %d", ErrInvalidSnapshot, storedSize, want)
	}

	if storedSize == 0 {
		payload := make([]byte, want)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("%w: short payload: %w", ErrInvalidSnapshot, err)
		}
		return payload, nil
	}

	stored := make([]byte, storedSize)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, fmt.Errorf("%w: short payload: %w", ErrInvalidSnapshot, err)
	}

	switch compression {
	case CompressionLZ4:
		payload := make([]byte, want)
		n, err := lz4.UncompressBlock(stored, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrInvalidSnapshot, err)
		}
		if n != want {
			return nil, fmt.Errorf("%w: payload size %d, want %d", ErrInvalidSnapshot, n, want)
		}
		return payload, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		payload, err := dec.DecodeAll(stored, make([]byte, 0, want))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrInvalidSnapshot, err)
		}
		if len(payload) != want {
			return nil, fmt.Errorf("%w: payload size %d, want %d", ErrInvalidSnapshot, len(payload), want)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("%w: unsupported compression %d", ErrInvalidSnapshot, compression)
	}
}
