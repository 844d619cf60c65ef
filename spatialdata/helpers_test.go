package spatialdata

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture builders: real zarr trees written under t.TempDir().

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

func mkGroup(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, ".zgroup"), map[string]interface{}{"zarr_format": 2})
	return dir
}

func mkStore(t *testing.T) string {
	t.Helper()
	return mkGroup(t, t.TempDir(), "data.zarr")
}

func setAttrs(t *testing.T, dir string, attrs map[string]interface{}) {
	t.Helper()
	writeJSON(t, filepath.Join(dir, ".zattrs"), attrs)
}

func zeroChunkName(rank int) string {
	if rank == 0 {
		return "0"
	}
	parts := make([]string, rank)
	for i := range parts {
		parts[i] = "0"
	}
	return strings.Join(parts, ".")
}

func mkRawArray(t *testing.T, parent, name string, shape []int, dt string, chunk []byte) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, ".zarray"), map[string]interface{}{
		"zarr_format": 2,
		"shape":       shape,
		"chunks":      shape,
		"dtype":       dt,
		"compressor":  nil,
		"fill_value":  0,
		"order":       "C",
		"filters":     nil,
	})
	if err := os.WriteFile(filepath.Join(dir, zeroChunkName(len(shape))), chunk, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func encF64(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func encI64(vals ...int64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
	}
	return out
}

func encU8(vals ...uint8) []byte {
	return append([]byte(nil), vals...)
}

// encS pads strings to width bytes each ("|S<width>").
func encS(width int, vals ...string) []byte {
	out := make([]byte, 0, width*len(vals))
	for _, v := range vals {
		b := make([]byte, width)
		copy(b, v)
		out = append(out, b...)
	}
	return out
}

// Transformation records

func ctScale(factors ...float64) map[string]interface{} {
	return map[string]interface{}{"type": "scale", "scale": factors}
}

func ctIdentity() map[string]interface{} {
	return map[string]interface{}{"type": "identity"}
}

// dsEntry is a dataset entry for multiscales metadata. A nil cts slice
// omits coordinateTransformations entirely.
func dsEntry(path string, cts ...map[string]interface{}) map[string]interface{} {
	e := map[string]interface{}{"path": path}
	if cts != nil {
		list := make([]interface{}, len(cts))
		for i, ct := range cts {
			list[i] = ct
		}
		e["coordinateTransformations"] = list
	}
	return e
}

func msBlock(name string, axes []string, datasets ...map[string]interface{}) []interface{} {
	axList := make([]interface{}, len(axes))
	for i, a := range axes {
		axList[i] = map[string]interface{}{"name": a, "type": "space"}
	}
	dsList := make([]interface{}, len(datasets))
	for i, d := range datasets {
		dsList[i] = d
	}
	entry := map[string]interface{}{
		"axes":     axList,
		"datasets": dsList,
		"version":  "0.4",
	}
	if name != "" {
		entry["name"] = name
	}
	return []interface{}{entry}
}

// mkImageSample builds a top-level sample group with a single-resolution
// 1x2x2 image and one scale transformation.
func mkImageSample(t *testing.T, root, name string) string {
	t.Helper()
	dir := mkGroup(t, root, name)
	setAttrs(t, dir, map[string]interface{}{
		"multiscales": msBlock(name, []string{"c", "y", "x"}, dsEntry("0", ctScale(1, 0.5, 0.5))),
	})
	mkRawArray(t, dir, "0", []int{1, 2, 2}, "|u1", encU8(10, 20, 30, 40))
	return dir
}

// mkLabelPyramid adds a two-level label pyramid under dir/labels/seg and
// declares it in the labels group attributes.
func mkLabelPyramid(t *testing.T, dir string) {
	t.Helper()
	labels := mkGroup(t, dir, "labels")
	setAttrs(t, labels, map[string]interface{}{"labels": []string{"seg"}})

	seg := mkGroup(t, labels, "seg")
	setAttrs(t, seg, map[string]interface{}{
		"multiscales": msBlock("seg", []string{"y", "x"},
			dsEntry("0", ctScale(1, 1)),
			dsEntry("1", ctScale(2, 2)),
		),
		"image-label": map[string]interface{}{"version": "0.4"},
	})
	mkRawArray(t, seg, "0", []int{2, 2}, "|u1", encU8(1, 1, 2, 2))
	mkRawArray(t, seg, "1", []int{1, 1}, "|u1", encU8(1))
}

// singleTransformAttrs builds the attribute block non-pyramidal elements
// carry: one multiscales entry, one dataset, cts transformations.
func singleTransformAttrs(cts ...map[string]interface{}) map[string]interface{} {
	list := make([]interface{}, len(cts))
	for i, ct := range cts {
		list[i] = ct
	}
	return map[string]interface{}{
		"multiscales": []interface{}{
			map[string]interface{}{
				"datasets": []interface{}{
					map[string]interface{}{"path": "coords", "coordinateTransformations": list},
				},
			},
		},
	}
}

// mkPolygons builds a polygons group holding two triangles encoded as a
// ragged array. geometry metadata carries the given code and name.
func mkPolygons(t *testing.T, parent string, code int, name string) string {
	t.Helper()
	dir := mkGroup(t, parent, "polygons")

	attrs := singleTransformAttrs(ctIdentity())
	attrs[attrGroupKey] = map[string]interface{}{
		"geos": map[string]interface{}{"geometry_type": code, "geometry_name": name},
	}
	setAttrs(t, dir, attrs)

	// Two triangles, one ring each: 8 vertices total (rings closed).
	coords := []float64{
		0, 0, 1, 0, 0, 1, 0, 0, // ring 0
		5, 5, 6, 5, 5, 6, 5, 5, // ring 1
	}
	mkRawArray(t, dir, "coords", []int{8, 2}, "<f8", encF64(coords...))
	// ring offsets (0,4,8) then polygon offsets (0,1,2)
	mkRawArray(t, dir, "offsets", []int{6}, "<i8", encI64(0, 4, 8, 0, 1, 2))
	return dir
}
