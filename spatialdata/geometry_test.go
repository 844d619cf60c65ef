package spatialdata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

func coordsArray(shape []int, vals ...float64) *zarr.Array {
	return &zarr.Array{Shape: shape, Elems: vals}
}

func TestGeometryTypeNames(t *testing.T) {
	want := map[GeometryType]string{
		TypePoint:              "Point",
		TypeLineString:         "LineString",
		TypeLinearRing:         "LinearRing",
		TypePolygon:            "Polygon",
		TypeMultiPoint:         "MultiPoint",
		TypeMultiLineString:    "MultiLineString",
		TypeMultiPolygon:       "MultiPolygon",
		TypeGeometryCollection: "GeometryCollection",
	}
	for typ, name := range want {
		if typ.String() != name {
			t.Errorf("%d.String() = %q, want %q", int(typ), typ.String(), name)
		}
	}
}

func TestGeometryTypeNameCrossCheck(t *testing.T) {
	codes := []GeometryType{
		TypePoint, TypeLineString, TypeLinearRing, TypePolygon,
		TypeMultiPoint, TypeMultiLineString, TypeMultiPolygon, TypeGeometryCollection,
	}

	for _, code := range codes {
		for _, name := range codes {
			sa := map[string]interface{}{
				"geos": map[string]interface{}{
					"geometry_type": float64(code),
					"geometry_name": name.String(),
				},
			}
			typ, err := geometryTypeFromAttrs(sa)
			if code == name {
				require.NoError(t, err, "%s/%s", code, name)
				require.Equal(t, code, typ)
			} else {
				require.Error(t, err, "%s/%s", code, name)
				require.True(t, errors.Is(err, ErrStructuralMismatch), "got %v", err)
			}
		}
	}
}

func TestGeometryTypeFromAttrsMalformed(t *testing.T) {
	cases := []map[string]interface{}{
		{},
		{"geos": "nope"},
		{"geos": map[string]interface{}{"geometry_name": "Point"}},
		{"geos": map[string]interface{}{"geometry_type": float64(0)}},
		{"geos": map[string]interface{}{"geometry_type": float64(42), "geometry_name": "Point"}},
	}
	for i, sa := range cases {
		_, err := geometryTypeFromAttrs(sa)
		require.Error(t, err, "case %d", i)
		require.True(t, errors.Is(err, ErrMalformedAttributes), "case %d: got %v", i, err)
	}
}

func TestFromRaggedArrayPoints(t *testing.T) {
	coords := coordsArray([]int{3, 2}, 0, 0, 1, 1, 2, 2)
	geoms, err := FromRaggedArray(TypePoint, coords, [2][]int64{})
	require.NoError(t, err)
	require.Len(t, geoms, 3)
	require.Equal(t, Vertex{2, 2}, geoms[2].Rings[0][0])
}

func TestFromRaggedArrayLineStrings(t *testing.T) {
	coords := coordsArray([]int{5, 2}, 0, 0, 1, 0, 2, 0, 10, 10, 11, 11)
	offsets := [2][]int64{{0, 3, 5}, {0, 1, 2}}
	geoms, err := FromRaggedArray(TypeLineString, coords, offsets)
	require.NoError(t, err)
	require.Len(t, geoms, 2)
	require.Len(t, geoms[0].Rings[0], 3)
	require.Len(t, geoms[1].Rings[0], 2)
	require.Equal(t, Vertex{11, 11}, geoms[1].Rings[0][1])
}

func TestFromRaggedArrayPolygons(t *testing.T) {
	// One polygon with an interior ring, one simple polygon.
	coords := coordsArray([]int{12, 2},
		0, 0, 4, 0, 4, 4, 0, 0, // exterior of polygon 0
		1, 1, 2, 1, 1, 2, 1, 1, // hole of polygon 0
		9, 9, 10, 9, 9, 10, 9, 9, // polygon 1
	)
	offsets := [2][]int64{{0, 4, 8, 12}, {0, 2, 3}}
	geoms, err := FromRaggedArray(TypePolygon, coords, offsets)
	require.NoError(t, err)
	require.Len(t, geoms, 2)
	require.Len(t, geoms[0].Rings, 2)
	require.Len(t, geoms[1].Rings, 1)
	require.Equal(t, Vertex{1, 2}, geoms[0].Rings[1][2])
}

func TestFromRaggedArrayBadInput(t *testing.T) {
	coords := coordsArray([]int{2, 2}, 0, 0, 1, 1)

	// decreasing offsets
	_, err := FromRaggedArray(TypeLineString, coords, [2][]int64{{0, 2, 1}, {0, 1}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedAttributes))

	// offsets beyond the coordinate buffer
	_, err = FromRaggedArray(TypeLineString, coords, [2][]int64{{0, 5}, {0, 1}})
	require.Error(t, err)

	// wrong rank
	flat := coordsArray([]int{4}, 0, 0, 1, 1)
	_, err = FromRaggedArray(TypePoint, flat, [2][]int64{})
	require.Error(t, err)

	// multi-part and collection types have no ragged decode
	_, err = FromRaggedArray(TypeGeometryCollection, coords, [2][]int64{{0, 2}, {0, 1}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedGeometry), "got %v", err)
}

func TestReadPolygons(t *testing.T) {
	root := mkStore(t)
	mkPolygons(t, root, int(TypePolygon), "Polygon")

	st, err := zarr.Open(root)
	require.NoError(t, err)
	defer st.Close()

	g, err := st.OpenGroup("polygons")
	require.NoError(t, err)

	gc, err := readPolygons(g, DefaultFormat())
	require.NoError(t, err)
	require.Equal(t, TypePolygon, gc.Type)
	require.Len(t, gc.Geometries, 2)
	require.Equal(t, Identity{}, gc.Transform)
}

func TestReadPolygonsNameMismatch(t *testing.T) {
	root := mkStore(t)
	mkPolygons(t, root, int(TypePolygon), "Point")

	st, err := zarr.Open(root)
	require.NoError(t, err)
	defer st.Close()

	g, err := st.OpenGroup("polygons")
	require.NoError(t, err)

	_, err = readPolygons(g, DefaultFormat())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStructuralMismatch), "got %v", err)
}

func TestReadPolygonsTransformCount(t *testing.T) {
	root := mkStore(t)
	dir := mkPolygons(t, root, int(TypePolygon), "Polygon")

	// rewrite attrs with two transformations
	attrs := singleTransformAttrs(ctIdentity(), ctScale(2, 2))
	attrs[attrGroupKey] = map[string]interface{}{
		"geos": map[string]interface{}{"geometry_type": int(TypePolygon), "geometry_name": "Polygon"},
	}
	setAttrs(t, dir, attrs)

	st, err := zarr.Open(root)
	require.NoError(t, err)
	defer st.Close()

	g, err := st.OpenGroup("polygons")
	require.NoError(t, err)

	_, err = readPolygons(g, DefaultFormat())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStructuralMismatch), "got %v", err)
}
