package zarr

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// mkGroup creates a group directory with a .zgroup marker and returns it.
func mkGroup(t *testing.T, parent string, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, ".zgroup"), map[string]interface{}{"zarr_format": 2})
	return dir
}

// mkStore creates a root group in a temp dir and returns its path.
func mkStore(t *testing.T) string {
	t.Helper()
	return mkGroup(t, t.TempDir(), "store.zarr")
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

// arrayMetaDoc builds a minimal .zarray document.
func arrayMetaDoc(shape, chunks []int, dt string, compressor interface{}, fill interface{}) map[string]interface{} {
	return map[string]interface{}{
		"zarr_format": 2,
		"shape":       shape,
		"chunks":      chunks,
		"dtype":       dt,
		"compressor":  compressor,
		"fill_value":  fill,
		"order":       "C",
		"filters":     nil,
	}
}

// mkArray creates an uncompressed array directory with the given metadata
// and a single chunk file holding raw.
func mkArray(t *testing.T, parent, name string, shape, chunks []int, dt string, chunkFiles map[string][]byte) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, ".zarray"), arrayMetaDoc(shape, chunks, dt, nil, 0))
	for cname, raw := range chunkFiles {
		if err := os.WriteFile(filepath.Join(dir, cname), raw, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func encodeF64(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func encodeU8(vals ...uint8) []byte {
	return append([]byte(nil), vals...)
}

func encodeI64(vals ...int64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}
