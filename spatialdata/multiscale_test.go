package spatialdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

func openNode(t *testing.T, root, path string) *Node {
	t.Helper()
	st, err := zarr.Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	g, err := st.OpenGroup(path)
	require.NoError(t, err)
	n, err := newNode(g)
	require.NoError(t, err)
	return n
}

func TestReadMultiscaleSingleLevel(t *testing.T) {
	root := mkStore(t)
	mkImageSample(t, root, "img")

	n := openNode(t, root, "img")
	el, err := readMultiscale(n, DefaultFormat())
	require.NoError(t, err)

	// Exactly one declared dataset decodes to a bare array, never to a
	// one-level pyramid.
	la, ok := el.(*LabeledArray)
	require.True(t, ok, "got %T", el)
	require.Equal(t, "img", la.Name)
	require.Equal(t, []string{"c", "y", "x"}, la.Axes)
	require.Equal(t, []int{1, 2, 2}, la.Data.Shape)
	require.Equal(t, Scale{Factors: []float64{1, 0.5, 0.5}}, la.Transform)
}

func TestReadMultiscalePyramid(t *testing.T) {
	root := mkStore(t)
	sample := mkGroup(t, root, "s")
	mkLabelPyramid(t, sample)

	n := openNode(t, root, "s/labels/seg")
	el, err := readMultiscale(n, DefaultFormat())
	require.NoError(t, err)

	m, ok := el.(*Multiscale)
	require.True(t, ok, "got %T", el)
	require.Equal(t, "seg", m.Name())
	require.Equal(t, 2, m.NumLevels())
	require.Equal(t, []string{"scale0", "scale1"}, m.Keys())

	// finest first
	levels := m.Levels()
	require.Equal(t, []int{2, 2}, levels[0].Data.Shape)
	require.Equal(t, []int{1, 1}, levels[1].Data.Shape)
	require.Equal(t, Scale{Factors: []float64{1, 1}}, levels[0].Transform)
	require.Equal(t, Scale{Factors: []float64{2, 2}}, levels[1].Transform)

	lv, ok := m.Level("scale1")
	require.True(t, ok)
	require.Equal(t, []int{1, 1}, lv.Data.Shape)

	_, ok = m.Level("scale2")
	require.False(t, ok)
}

func TestReadMultiscaleTransformCountMismatch(t *testing.T) {
	root := mkStore(t)
	dir := mkGroup(t, root, "img")
	// Two datasets, only the first carries a transformation.
	setAttrs(t, dir, map[string]interface{}{
		"multiscales": msBlock("img", []string{"y", "x"},
			dsEntry("0", ctScale(1, 1)),
			dsEntry("1"),
		),
	})
	mkRawArray(t, dir, "0", []int{2, 2}, "|u1", encU8(1, 2, 3, 4))
	mkRawArray(t, dir, "1", []int{1, 1}, "|u1", encU8(1))

	n := openNode(t, root, "img")
	_, err := readMultiscale(n, DefaultFormat())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStructuralMismatch), "got %v", err)
	require.Contains(t, err.Error(), "one transformation per dataset")
}

func TestReadMultiscaleMissingResolution(t *testing.T) {
	root := mkStore(t)
	dir := mkImageSample(t, root, "img")
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "0")))

	n := openNode(t, root, "img")
	_, err := readMultiscale(n, DefaultFormat())
	require.Error(t, err)
	require.True(t, errors.Is(err, zarr.ErrNotFound), "got %v", err)
}

func TestReadMultiscaleLegacyStringAxes(t *testing.T) {
	root := mkStore(t)
	dir := mkGroup(t, root, "img")
	setAttrs(t, dir, map[string]interface{}{
		"multiscales": []interface{}{
			map[string]interface{}{
				"axes": []interface{}{"y", "x"},
				"datasets": []interface{}{
					dsEntry("0", ctIdentity()),
				},
			},
		},
	})
	mkRawArray(t, dir, "0", []int{2, 2}, "|u1", encU8(1, 2, 3, 4))

	n := openNode(t, root, "img")
	el, err := readMultiscale(n, DefaultFormat())
	require.NoError(t, err)
	la := el.(*LabeledArray)
	require.Equal(t, []string{"y", "x"}, la.Axes)
	require.Equal(t, Identity{}, la.Transform)
}

func TestParseDatasetsBadEntries(t *testing.T) {
	cases := []map[string]interface{}{
		{},
		{"datasets": []interface{}{}},
		{"datasets": []interface{}{"nope"}},
		{"datasets": []interface{}{map[string]interface{}{}}},
	}
	for i, ms := range cases {
		_, err := parseDatasets(ms)
		require.Error(t, err, "case %d", i)
		require.True(t, errors.Is(err, ErrMalformedAttributes), "case %d: got %v", i, err)
	}
}
