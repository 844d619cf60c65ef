package spatialdata

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// attrGroupKey is the fixed name of the attribute group carrying
// dataset-level semantic annotations (region linkage, instance keys).
const attrGroupKey = "spatialdata_attrs"

// Keys the attribute group must carry after normalization.
var attrGroupRequiredKeys = []string{"region", "region_key", "instance_key"}

// AnnotationTable is a row-oriented annotation block: per-row columns
// materialized as an Arrow record, an optional numeric matrix, and the
// unstructured metadata mapping that carries the attribute group.
type AnnotationTable struct {
	NumRows  int64
	ObsIndex string       // name of the index column, "" if undeclared
	Obs      arrow.Record // row annotations; nil when the table has no columns
	X        *zarr.Array  // optional value matrix
	Uns      map[string]interface{}
}

// Columns returns the obs column names in declared order.
func (t *AnnotationTable) Columns() []string {
	if t.Obs == nil {
		return nil
	}
	fields := t.Obs.Schema().Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// readTable loads an annotation table group: the obs columns in their
// declared order, the optional X matrix, the uns metadata tree, and then
// normalizes the attribute group.
func readTable(g *zarr.Group) (*AnnotationTable, error) {
	t := &AnnotationTable{Uns: map[string]interface{}{}}

	if g.Exists("obs") {
		obs, err := g.OpenGroup("obs")
		if err != nil {
			return nil, fmt.Errorf("obs: %w", err)
		}
		if err := readObs(obs, t); err != nil {
			return nil, fmt.Errorf("obs: %w", err)
		}
	}

	if g.Exists("X") {
		ds, err := g.OpenDataset("X")
		if err != nil {
			return nil, fmt.Errorf("X: %w", err)
		}
		x, err := ds.ReadArray()
		if err != nil {
			return nil, fmt.Errorf("X: %w", err)
		}
		t.X = x
		if t.NumRows == 0 && x.Rank() > 0 {
			t.NumRows = int64(x.Shape[0])
		}
	}

	if g.Exists("uns") {
		uns, err := g.OpenGroup("uns")
		if err != nil {
			return nil, fmt.Errorf("uns: %w", err)
		}
		m, err := readAttrTree(uns)
		if err != nil {
			return nil, fmt.Errorf("uns: %w", err)
		}
		t.Uns = m
	}

	if err := NormalizeTableAttrs(t.Uns); err != nil {
		return nil, err
	}
	return t, nil
}

// readObs reads the obs column group into an Arrow record. Column order
// comes from the "column-order" attribute; the index column, when
// declared, is materialized first.
func readObs(g *zarr.Group, t *AnnotationTable) error {
	attrs, err := g.Attrs()
	if err != nil {
		return err
	}

	var columns []string
	if idx, ok := attrs["_index"].(string); ok {
		t.ObsIndex = idx
		columns = append(columns, idx)
	}
	if order, ok := attrs["column-order"].([]interface{}); ok {
		for i, c := range order {
			name, ok := c.(string)
			if !ok {
				return fmt.Errorf("%w: column-order entry %d is not a string", ErrMalformedAttributes, i)
			}
			columns = append(columns, name)
		}
	}
	if len(columns) == 0 {
		return nil
	}

	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, 0, len(columns))
	cols := make([]arrow.Array, 0, len(columns))
	rows := int64(-1)

	for _, name := range columns {
		ds, err := g.OpenDataset(name)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		arr, err := ds.ReadArray()
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		if rows >= 0 && int64(arr.Len()) != rows {
			return fmt.Errorf("%w: column %q has %d rows, want %d", ErrMalformedAttributes, name, arr.Len(), rows)
		}
		rows = int64(arr.Len())

		field, col, err := arrowColumn(mem, name, arr.Elems)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		fields = append(fields, field)
		cols = append(cols, col)
	}

	schema := arrow.NewSchema(fields, nil)
	t.Obs = array.NewRecord(schema, cols, rows)
	t.NumRows = rows
	return nil
}

// arrowColumn builds one Arrow column from a canonical slice.
func arrowColumn(mem memory.Allocator, name string, vals interface{}) (arrow.Field, arrow.Array, error) {
	switch v := vals.(type) {
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}, b.NewArray(), nil
	case []uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint64}, b.NewArray(), nil
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}, b.NewArray(), nil
	case []bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Boolean}, b.NewArray(), nil
	case []string:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return arrow.Field{Name: name, Type: arrow.BinaryTypes.String}, b.NewArray(), nil
	default:
		return arrow.Field{}, nil, fmt.Errorf("unsupported column type %T", vals)
	}
}

// readAttrTree reads a metadata group recursively into a plain mapping:
// the group's attributes, child groups as nested mappings, and child
// datasets as their typed element slices.
func readAttrTree(g *zarr.Group) (map[string]interface{}, error) {
	out, err := g.Attrs()
	if err != nil {
		return nil, err
	}

	children, err := g.Children()
	if err != nil {
		return nil, err
	}
	for _, name := range children {
		if sub, err := g.OpenGroup(name); err == nil {
			m, err := readAttrTree(sub)
			if err != nil {
				return nil, err
			}
			out[name] = m
			continue
		}
		ds, err := g.OpenDataset(name)
		if err != nil {
			return nil, err
		}
		arr, err := ds.ReadArray()
		if err != nil {
			return nil, err
		}
		out[name] = arr.Elems
	}
	return out, nil
}

// NormalizeTableAttrs repairs the attribute group of a loaded table so it
// always has one canonical shape. It is a no-op when the mapping has no
// attribute group at all. Otherwise the region, region_key and
// instance_key entries are guaranteed present (nil when the source
// omitted them) and a region stored as a homogeneous array is converted
// to a plain list. Running it twice is the same as running it once.
func NormalizeTableAttrs(uns map[string]interface{}) error {
	raw, ok := uns[attrGroupKey]
	if !ok {
		return nil
	}
	attrs, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: %s is not a record", ErrMalformedAttributes, attrGroupKey)
	}

	for _, key := range attrGroupRequiredKeys {
		if _, ok := attrs[key]; !ok {
			attrs[key] = nil
		}
	}

	attrs["region"] = regionList(attrs["region"])
	return nil
}

// regionList converts array-like region values (typed slices read from a
// stored array) to a plain ordered list. Plain lists and scalars pass
// through unchanged.
func regionList(v interface{}) interface{} {
	switch r := v.(type) {
	case []int64:
		out := make([]interface{}, len(r))
		for i, x := range r {
			out[i] = x
		}
		return out
	case []uint64:
		out := make([]interface{}, len(r))
		for i, x := range r {
			out[i] = x
		}
		return out
	case []float64:
		out := make([]interface{}, len(r))
		for i, x := range r {
			out[i] = x
		}
		return out
	case []string:
		out := make([]interface{}, len(r))
		for i, x := range r {
			out[i] = x
		}
		return out
	case []bool:
		out := make([]interface{}, len(r))
		for i, x := range r {
			out[i] = x
		}
		return out
	default:
		return v
	}
}
