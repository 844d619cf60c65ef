package spatialdata

import (
	"fmt"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// GeometryType is the GEOS geometry type code stored in geometry
// metadata.
type GeometryType int

const (
	TypePoint GeometryType = iota
	TypeLineString
	TypeLinearRing
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
)

// String returns the canonical geometry type name for the code.
func (t GeometryType) String() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypeLineString:
		return "LineString"
	case TypeLinearRing:
		return "LinearRing"
	case TypePolygon:
		return "Polygon"
	case TypeMultiPoint:
		return "MultiPoint"
	case TypeMultiLineString:
		return "MultiLineString"
	case TypeMultiPolygon:
		return "MultiPolygon"
	case TypeGeometryCollection:
		return "GeometryCollection"
	default:
		return fmt.Sprintf("GeometryType(%d)", int(t))
	}
}

func (t GeometryType) valid() bool {
	return t >= TypePoint && t <= TypeGeometryCollection
}

// Vertex is one coordinate tuple (2 or 3 values).
type Vertex []float64

// Geometry is one decoded geometry. Points and lines have a single ring;
// polygons have one exterior ring followed by interior rings.
type Geometry struct {
	Type  GeometryType
	Rings [][]Vertex
}

// GeometryCollection is a sequence of geometries of one type with a
// collection-level transform. The transform rides on the collection, not
// on individual geometries.
type GeometryCollection struct {
	Type       GeometryType
	Geometries []Geometry
	Transform  Transform
}

// FromRaggedArray reconstructs geometries from a flat coordinate buffer
// and two offset arrays. coords must have shape (n, dim). offsets[0]
// delimits vertex runs (rings or line parts); offsets[1] groups runs into
// geometries. Points use neither.
func FromRaggedArray(typ GeometryType, coords *zarr.Array, offsets [2][]int64) ([]Geometry, error) {
	if coords.Rank() != 2 {
		return nil, fmt.Errorf("%w: coordinate buffer has rank %d, want 2", ErrMalformedAttributes, coords.Rank())
	}
	dim := coords.Shape[1]
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("%w: coordinate dimension %d", ErrMalformedAttributes, dim)
	}
	flat := coords.Float64s()
	if flat == nil {
		return nil, fmt.Errorf("%w: coordinate buffer is not floating point", ErrMalformedAttributes)
	}
	n := int64(coords.Shape[0])

	vertex := func(i int64) Vertex {
		v := make(Vertex, dim)
		copy(v, flat[int(i)*dim:(int(i)+1)*dim])
		return v
	}

	run := func(lo, hi int64) []Vertex {
		out := make([]Vertex, 0, hi-lo)
		for i := lo; i < hi; i++ {
			out = append(out, vertex(i))
		}
		return out
	}

	switch typ {
	case TypePoint:
		out := make([]Geometry, n)
		for i := int64(0); i < n; i++ {
			out[i] = Geometry{Type: TypePoint, Rings: [][]Vertex{{vertex(i)}}}
		}
		return out, nil

	case TypeLineString:
		if err := checkOffsets(offsets[0], n); err != nil {
			return nil, err
		}
		out := make([]Geometry, 0, len(offsets[0])-1)
		for j := 0; j+1 < len(offsets[0]); j++ {
			out = append(out, Geometry{
				Type:  TypeLineString,
				Rings: [][]Vertex{run(offsets[0][j], offsets[0][j+1])},
			})
		}
		return out, nil

	case TypePolygon:
		ringOffsets, polyOffsets := offsets[0], offsets[1]
		if err := checkOffsets(ringOffsets, n); err != nil {
			return nil, err
		}
		if err := checkOffsets(polyOffsets, int64(len(ringOffsets)-1)); err != nil {
			return nil, err
		}
		out := make([]Geometry, 0, len(polyOffsets)-1)
		for p := 0; p+1 < len(polyOffsets); p++ {
			rings := make([][]Vertex, 0, polyOffsets[p+1]-polyOffsets[p])
			for r := polyOffsets[p]; r < polyOffsets[p+1]; r++ {
				rings = append(rings, run(ringOffsets[r], ringOffsets[r+1]))
			}
			out = append(out, Geometry{Type: TypePolygon, Rings: rings})
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: ragged decoding of %s geometries", ErrUnsupportedGeometry, typ)
	}
}

// checkOffsets validates an offset array against the length of the
// buffer it indexes into.
func checkOffsets(offsets []int64, limit int64) error {
	if len(offsets) < 2 {
		return fmt.Errorf("%w: offset array needs at least two entries", ErrMalformedAttributes)
	}
	prev := offsets[0]
	if prev < 0 {
		return fmt.Errorf("%w: negative offset", ErrMalformedAttributes)
	}
	for _, o := range offsets[1:] {
		if o < prev {
			return fmt.Errorf("%w: offsets decrease (%d after %d)", ErrMalformedAttributes, o, prev)
		}
		prev = o
	}
	if prev > limit {
		return fmt.Errorf("%w: offset %d exceeds buffer length %d", ErrMalformedAttributes, prev, limit)
	}
	return nil
}

// geometryTypeFromAttrs reads the numeric geometry type code and cross-
// checks it against the redundant human-readable name stored next to it.
// A disagreement means the metadata is corrupt and is fatal.
func geometryTypeFromAttrs(sa map[string]interface{}) (GeometryType, error) {
	geos, ok := sa["geos"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("%w: no geos record", ErrMalformedAttributes)
	}
	code, ok := geos["geometry_type"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: no geometry_type code", ErrMalformedAttributes)
	}
	name, ok := geos["geometry_name"].(string)
	if !ok {
		return 0, fmt.Errorf("%w: no geometry_name", ErrMalformedAttributes)
	}

	typ := GeometryType(int(code))
	if !typ.valid() {
		return 0, fmt.Errorf("%w: geometry type code %d out of range", ErrMalformedAttributes, int(code))
	}
	if typ.String() != name {
		return 0, fmt.Errorf("%w: geometry type %d (%s) does not match geometry_name %q",
			ErrStructuralMismatch, int(code), typ, name)
	}
	return typ, nil
}

// readPolygons decodes a polygons group: packed coordinates, the paired
// offset arrays, and the type code/name pair, plus exactly one transform.
func readPolygons(g *zarr.Group, f Format) (*GeometryCollection, error) {
	attrs, err := g.Attrs()
	if err != nil {
		return nil, err
	}

	sa, ok := attrs[attrGroupKey].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: no %s record", ErrMalformedAttributes, attrGroupKey)
	}
	typ, err := geometryTypeFromAttrs(sa)
	if err != nil {
		return nil, err
	}

	transform, err := singleTransform(attrs, f)
	if err != nil {
		return nil, err
	}

	coordsDS, err := g.OpenDataset("coords")
	if err != nil {
		return nil, fmt.Errorf("coords: %w", err)
	}
	coords, err := coordsDS.ReadArray()
	if err != nil {
		return nil, fmt.Errorf("coords: %w", err)
	}

	offsetsDS, err := g.OpenDataset("offsets")
	if err != nil {
		return nil, fmt.Errorf("offsets: %w", err)
	}
	flat, err := offsetsDS.ReadInt64()
	if err != nil {
		return nil, fmt.Errorf("offsets: %w", err)
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: offsets buffer has odd length %d", ErrMalformedAttributes, len(flat))
	}
	half := len(flat) / 2
	offsets := [2][]int64{flat[:half], flat[half:]}

	geoms, err := FromRaggedArray(typ, coords, offsets)
	if err != nil {
		return nil, err
	}

	return &GeometryCollection{Type: typ, Geometries: geoms, Transform: transform}, nil
}

// singleTransform decodes the one transformation a non-pyramidal element
// must carry under multiscales[0].datasets[0]. Any other transformation
// count is fatal.
func singleTransform(attrs map[string]interface{}, f Format) (Transform, error) {
	list, ok := attrs[multiscalesKey].([]interface{})
	if !ok || len(list) != 1 {
		return nil, fmt.Errorf("%w: expecting exactly one multiscales entry", ErrMalformedAttributes)
	}
	ms, ok := list[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: multiscales entry is not a record", ErrMalformedAttributes)
	}
	datasets, ok := ms["datasets"].([]interface{})
	if !ok || len(datasets) != 1 {
		return nil, fmt.Errorf("%w: expecting exactly one dataset entry", ErrMalformedAttributes)
	}
	rec, ok := datasets[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: dataset entry is not a record", ErrMalformedAttributes)
	}

	cts, _ := rec["coordinateTransformations"].([]interface{})
	if len(cts) != 1 {
		return nil, fmt.Errorf("%w: expecting exactly one transformation, got %d", ErrStructuralMismatch, len(cts))
	}
	ct, ok := cts[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: transformation is not a record", ErrMalformedAttributes)
	}
	return DecodeTransform(ct, f)
}
