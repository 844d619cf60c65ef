package zarr

import (
	"encoding/json"
	"fmt"
	"os"
	gopath "path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-spatialdata/internal/codec"
	"github.com/robert-malhotra/go-spatialdata/internal/dtype"
)

// compressorMeta is the numcodecs compressor record in .zarray.
type compressorMeta struct {
	ID string `json:"id"`
}

// arrayMeta mirrors the .zarray metadata document.
type arrayMeta struct {
	ZarrFormat int             `json:"zarr_format"`
	Shape      []int           `json:"shape"`
	Chunks     []int           `json:"chunks"`
	Dtype      string          `json:"dtype"`
	Compressor *compressorMeta `json:"compressor"`
	FillValue  interface{}     `json:"fill_value"`
	Order      string          `json:"order"`
	Filters    []interface{}   `json:"filters"`
}

// Dataset represents a Zarr array.
type Dataset struct {
	store *Store
	path  string
	dir   string
	meta  arrayMeta
	dt    dtype.Dtype
	codec codec.Codec
}

// newDataset reads and validates .zarray metadata.
func newDataset(store *Store, storePath, dir string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Join(dir, arrayMetaFile))
	if err != nil {
		return nil, fmt.Errorf("dataset %q: reading %s: %w", storePath, arrayMetaFile, err)
	}

	var meta arrayMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("dataset %q: parsing %s: %w", storePath, arrayMetaFile, err)
	}

	if meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("dataset %q: %w: zarr format %d", storePath, ErrUnsupported, meta.ZarrFormat)
	}
	if meta.Order != "" && meta.Order != "C" {
		return nil, fmt.Errorf("dataset %q: %w: order %q", storePath, ErrUnsupported, meta.Order)
	}
	if len(meta.Filters) > 0 {
		return nil, fmt.Errorf("dataset %q: %w: filter pipelines", storePath, ErrUnsupported)
	}
	if len(meta.Shape) != len(meta.Chunks) {
		return nil, fmt.Errorf("dataset %q: shape rank %d != chunk rank %d", storePath, len(meta.Shape), len(meta.Chunks))
	}
	for i, c := range meta.Chunks {
		if c <= 0 || meta.Shape[i] < 0 {
			return nil, fmt.Errorf("dataset %q: invalid shape/chunks at axis %d", storePath, i)
		}
	}

	dt, err := dtype.Parse(meta.Dtype)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w: %v", storePath, ErrUnsupported, err)
	}

	var id string
	if meta.Compressor != nil {
		id = meta.Compressor.ID
	}
	c, err := codec.Get(id)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w: %v", storePath, ErrUnsupported, err)
	}

	return &Dataset{store: store, path: storePath, dir: dir, meta: meta, dt: dt, codec: c}, nil
}

// Name returns the dataset name (last component of its store path).
func (d *Dataset) Name() string {
	return gopath.Base(d.path)
}

// Path returns the full store path of this dataset.
func (d *Dataset) Path() string {
	return d.path
}

// Shape returns the dimensions of the dataset.
func (d *Dataset) Shape() []int {
	out := make([]int, len(d.meta.Shape))
	copy(out, d.meta.Shape)
	return out
}

// Chunks returns the chunk dimensions.
func (d *Dataset) Chunks() []int {
	out := make([]int, len(d.meta.Chunks))
	copy(out, d.meta.Chunks)
	return out
}

// Rank returns the number of dimensions.
func (d *Dataset) Rank() int {
	return len(d.meta.Shape)
}

// NumElements returns the total number of elements.
func (d *Dataset) NumElements() int {
	n := 1
	for _, s := range d.meta.Shape {
		n *= s
	}
	return n
}

// DtypeKind returns the broad element type class.
func (d *Dataset) DtypeKind() dtype.Kind {
	return d.dt.Kind
}

// DtypeSize returns the on-disk size of each element in bytes.
func (d *Dataset) DtypeSize() int {
	return d.dt.Size
}

// Attrs returns the dataset's attribute mapping, decoded from .zattrs.
func (d *Dataset) Attrs() (map[string]interface{}, error) {
	if d.store.closed {
		return nil, ErrClosed
	}
	attrs, err := readAttrs(d.dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", d.path, err)
	}
	return attrs, nil
}

// ReadArray reads the whole dataset and returns it as an auto-typed Array.
// Missing chunk files read as the fill value.
func (d *Dataset) ReadArray() (*Array, error) {
	if d.store.closed {
		return nil, ErrClosed
	}

	full, err := dtype.Fill(d.dt, d.meta.FillValue, d.NumElements())
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", d.path, err)
	}

	chunkElems := 1
	for _, c := range d.meta.Chunks {
		chunkElems *= c
	}

	grid := make([]int, len(d.meta.Shape))
	for i := range grid {
		grid[i] = (d.meta.Shape[i] + d.meta.Chunks[i] - 1) / d.meta.Chunks[i]
		if grid[i] == 0 {
			// zero-size axis: nothing to read
			return &Array{Shape: d.Shape(), Elems: full}, nil
		}
	}

	idx := make([]int, len(grid))
	for {
		raw, ok, err := d.readChunk(chunkName(idx))
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", d.path, err)
		}
		if ok {
			vals, err := dtype.Decode(d.dt, raw, chunkElems)
			if err != nil {
				return nil, fmt.Errorf("dataset %q: %w", d.path, err)
			}
			if err := copyChunkInto(full, vals, d.meta.Shape, d.meta.Chunks, idx); err != nil {
				return nil, fmt.Errorf("dataset %q: %w", d.path, err)
			}
		}
		if !increment(idx, grid) {
			break
		}
	}

	return &Array{Shape: d.Shape(), Elems: full}, nil
}

// Read reads all data from the dataset into dest.
// dest should be a pointer to a slice of a canonical type.
func (d *Dataset) Read(dest interface{}) error {
	arr, err := d.ReadArray()
	if err != nil {
		return err
	}
	if err := dtype.Assign(arr.Elems, dest); err != nil {
		return fmt.Errorf("dataset %q: %w", d.path, err)
	}
	return nil
}

// ReadFloat64 reads the dataset as float64 values.
func (d *Dataset) ReadFloat64() ([]float64, error) {
	var result []float64
	err := d.Read(&result)
	return result, err
}

// ReadInt64 reads the dataset as int64 values.
func (d *Dataset) ReadInt64() ([]int64, error) {
	var result []int64
	err := d.Read(&result)
	return result, err
}

// ReadUint64 reads the dataset as uint64 values.
func (d *Dataset) ReadUint64() ([]uint64, error) {
	var result []uint64
	err := d.Read(&result)
	return result, err
}

// ReadString reads the dataset as string values.
func (d *Dataset) ReadString() ([]string, error) {
	var result []string
	err := d.Read(&result)
	return result, err
}

// ReadBool reads the dataset as bool values.
func (d *Dataset) ReadBool() ([]bool, error) {
	var result []bool
	err := d.Read(&result)
	return result, err
}

// readChunk loads and decompresses one chunk file. A missing file is not
// an error; it reports ok=false.
func (d *Dataset) readChunk(name string) ([]byte, bool, error) {
	raw, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading chunk %s: %w", name, err)
	}

	out, err := d.codec.Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding chunk %s: %w", name, err)
	}
	return out, true, nil
}

// chunkName renders a chunk grid index as a dot-joined key.
func chunkName(idx []int) string {
	if len(idx) == 0 {
		return "0"
	}
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// increment advances idx through the chunk grid in C order. It reports
// false once the grid is exhausted.
func increment(idx, grid []int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < grid[i] {
			return true
		}
		idx[i] = 0
	}
	return false
}

// copyChunkInto copies the valid region of a decoded chunk into the full
// destination buffer, clipping edge chunks against the array shape.
func copyChunkInto(dst, src interface{}, shape, chunks, idx []int) error {
	switch d := dst.(type) {
	case []float64:
		return copyChunk(d, src.([]float64), shape, chunks, idx)
	case []int64:
		return copyChunk(d, src.([]int64), shape, chunks, idx)
	case []uint64:
		return copyChunk(d, src.([]uint64), shape, chunks, idx)
	case []bool:
		return copyChunk(d, src.([]bool), shape, chunks, idx)
	case []string:
		return copyChunk(d, src.([]string), shape, chunks, idx)
	default:
		return fmt.Errorf("unsupported element type %T", dst)
	}
}

func copyChunk[T any](dst, src []T, shape, chunks, idx []int) error {
	rank := len(shape)
	if rank == 0 {
		if len(src) == 0 || len(dst) == 0 {
			return fmt.Errorf("scalar chunk is empty")
		}
		dst[0] = src[0]
		return nil
	}

	origin := make([]int, rank)
	ext := make([]int, rank)
	for i := range shape {
		origin[i] = idx[i] * chunks[i]
		ext[i] = chunks[i]
		if rest := shape[i] - origin[i]; rest < ext[i] {
			ext[i] = rest
		}
		if ext[i] <= 0 {
			return nil // chunk fully outside the array
		}
	}

	dstStride := strides(shape)
	srcStride := strides(chunks)

	pos := make([]int, rank)
	for {
		dstOff := 0
		srcOff := 0
		for i := 0; i < rank; i++ {
			dstOff += (origin[i] + pos[i]) * dstStride[i]
			srcOff += pos[i] * srcStride[i]
		}
		copy(dst[dstOff:dstOff+ext[rank-1]], src[srcOff:srcOff+ext[rank-1]])

		// advance over all but the innermost dimension
		i := rank - 2
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < ext[i] {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// strides returns C-order strides (in elements) for the given dims.
func strides(dims []int) []int {
	out := make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		out[i] = s
		s *= dims[i]
	}
	return out
}
