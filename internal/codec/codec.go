// Package codec implements Zarr chunk decompression.
//
// Zarr v2 names its compressors with numcodecs ids. This package maps the
// ids that appear in on-disk metadata to decoders:
//
//   - "gzip": RFC 1952 gzip streams
//   - "zlib": RFC 1950 zlib streams
//   - "zstd": Zstandard frames
//
// A nil compressor record means chunks are stored raw; [Raw] handles that
// case so callers can treat every dataset uniformly. Blosc is the one
// common numcodecs compressor deliberately absent: it needs the C blosc
// frame layout and is out of reach without cgo.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Codec decodes one compressed chunk into raw bytes.
type Codec interface {
	// ID returns the numcodecs identifier.
	ID() string

	// Decode decompresses a full chunk.
	Decode(input []byte) ([]byte, error)
}

// Get returns the codec registered for the given numcodecs id.
func Get(id string) (Codec, error) {
	switch id {
	case "", "raw":
		return Raw{}, nil
	case "gzip":
		return Gzip{}, nil
	case "zlib":
		return Zlib{}, nil
	case "zstd":
		return Zstd{}, nil
	default:
		return nil, fmt.Errorf("unsupported compressor %q", id)
	}
}

// Raw passes chunk bytes through unchanged (null compressor).
type Raw struct{}

func (Raw) ID() string { return "raw" }

func (Raw) Decode(input []byte) ([]byte, error) {
	return input, nil
}

// Gzip decodes gzip-compressed chunks.
type Gzip struct{}

func (Gzip) ID() string { return "gzip" }

func (Gzip) Decode(input []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return output, nil
}

// Zlib decodes zlib-compressed chunks.
type Zlib struct{}

func (Zlib) ID() string { return "zlib" }

func (Zlib) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	output, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return output, nil
}

// Zstd decodes Zstandard-compressed chunks.
type Zstd struct{}

func (Zstd) ID() string { return "zstd" }

func (Zstd) Decode(input []byte) ([]byte, error) {
	r, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer r.Close()

	output, err := r.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return output, nil
}
