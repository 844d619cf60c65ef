package spatialdata

import (
	"fmt"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// PointsElement is a point cloud: a coordinate matrix of shape (n, dim)
// with a single element-level transform.
type PointsElement struct {
	Coords    *zarr.Array
	Transform Transform
}

// NumPoints returns the number of points.
func (p *PointsElement) NumPoints() int {
	if p.Coords.Rank() == 0 {
		return 0
	}
	return p.Coords.Shape[0]
}

// readPoints decodes a points group. The group is laid out as an
// annotation table whose X matrix holds the (n, dim) coordinates, plus
// exactly one transform from the group attributes.
func readPoints(g *zarr.Group, f Format) (*PointsElement, error) {
	attrs, err := g.Attrs()
	if err != nil {
		return nil, err
	}
	transform, err := singleTransform(attrs, f)
	if err != nil {
		return nil, err
	}

	table, err := readTable(g)
	if err != nil {
		return nil, err
	}
	coords := table.X
	if coords == nil {
		return nil, fmt.Errorf("%w: points group has no X coordinate matrix", ErrMalformedAttributes)
	}
	if coords.Rank() != 2 {
		return nil, fmt.Errorf("%w: X coordinate matrix has rank %d, want 2", ErrMalformedAttributes, coords.Rank())
	}

	return &PointsElement{Coords: coords, Transform: transform}, nil
}

// ShapesElement is a table-backed shape collection (circles, squares and
// similar parameterized regions) with its attribute group and a single
// element-level transform.
type ShapesElement struct {
	Table     *AnnotationTable
	Attrs     map[string]interface{}
	Transform Transform
}

// readShapes decodes a shapes group: its annotation table, the raw
// attribute group, and exactly one transform.
func readShapes(g *zarr.Group, f Format) (*ShapesElement, error) {
	attrs, err := g.Attrs()
	if err != nil {
		return nil, err
	}
	transform, err := singleTransform(attrs, f)
	if err != nil {
		return nil, err
	}

	table, err := readTable(g)
	if err != nil {
		return nil, err
	}

	sa, _ := attrs[attrGroupKey].(map[string]interface{})
	return &ShapesElement{Table: table, Attrs: sa, Transform: transform}, nil
}
