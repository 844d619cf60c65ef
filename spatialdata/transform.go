package spatialdata

import "fmt"

// Transform is a typed description of a coordinate-space mapping attached
// to a spatial element. Transforms are immutable once decoded; composing
// or inverting them is out of scope here.
type Transform interface {
	transform()
}

// Identity maps coordinates to themselves.
type Identity struct{}

// Scale multiplies each axis by a factor.
type Scale struct {
	Factors []float64
}

// Translation shifts each axis by an offset.
type Translation struct {
	Offsets []float64
}

// Affine applies a full affine matrix in homogeneous coordinates.
type Affine struct {
	Matrix [][]float64
}

// Sequence applies its transforms in order.
type Sequence struct {
	Transforms []Transform
}

func (Identity) transform()    {}
func (Scale) transform()       {}
func (Translation) transform() {}
func (Affine) transform()      {}
func (Sequence) transform()    {}

// DecodeTransform parses a coordinate transformation description record
// into a typed Transform. The record is the JSON object stored under a
// dataset's "coordinateTransformations" list. Formats older than 0.4
// stored translations under the type name "translate"; the alias is
// accepted only for those versions. Malformed records fail with
// ErrMalformedAttributes.
func DecodeTransform(rec map[string]interface{}, f Format) (Transform, error) {
	typ, ok := rec["type"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: transformation record has no type", ErrMalformedAttributes)
	}

	switch typ {
	case "identity":
		return Identity{}, nil

	case "scale":
		factors, err := floatSlice(rec["scale"])
		if err != nil {
			return nil, fmt.Errorf("%w: scale transformation: %v", ErrMalformedAttributes, err)
		}
		return Scale{Factors: factors}, nil

	case "translation":
		offsets, err := floatSlice(rec["translation"])
		if err != nil {
			return nil, fmt.Errorf("%w: translation transformation: %v", ErrMalformedAttributes, err)
		}
		return Translation{Offsets: offsets}, nil

	case "translate":
		if !f.legacyTransforms() {
			return nil, fmt.Errorf("%w: transformation type %q needs a pre-%s format",
				ErrMalformedAttributes, typ, transformRenameVersion)
		}
		offsets, err := floatSlice(rec["translate"])
		if err != nil {
			return nil, fmt.Errorf("%w: translation transformation: %v", ErrMalformedAttributes, err)
		}
		return Translation{Offsets: offsets}, nil

	case "affine":
		rows, ok := rec["affine"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: affine transformation has no matrix", ErrMalformedAttributes)
		}
		matrix := make([][]float64, len(rows))
		for i, r := range rows {
			row, err := floatSlice(r)
			if err != nil {
				return nil, fmt.Errorf("%w: affine matrix row %d: %v", ErrMalformedAttributes, i, err)
			}
			matrix[i] = row
		}
		return Affine{Matrix: matrix}, nil

	case "sequence":
		steps, ok := rec["transformations"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: sequence transformation has no steps", ErrMalformedAttributes)
		}
		out := make([]Transform, len(steps))
		for i, s := range steps {
			step, ok := s.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: sequence step %d is not a record", ErrMalformedAttributes, i)
			}
			t, err := DecodeTransform(step, f)
			if err != nil {
				return nil, fmt.Errorf("sequence step %d: %w", i, err)
			}
			out[i] = t
		}
		return Sequence{Transforms: out}, nil

	default:
		return nil, fmt.Errorf("%w: unknown transformation type %q", ErrMalformedAttributes, typ)
	}
}

// floatSlice converts a JSON-decoded list of numbers to []float64.
func floatSlice(v interface{}) ([]float64, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of numbers, got %T", v)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("empty number list")
	}
	out := make([]float64, len(list))
	for i, e := range list {
		f, ok := e.(float64)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not a number", i, e)
		}
		out[i] = f
	}
	return out, nil
}
