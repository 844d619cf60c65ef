package dtype

import (
	"fmt"
	"math"
	"strings"
)

// Decode converts raw chunk bytes into a canonical Go slice for the given
// dtype. The raw buffer must hold at least n elements.
func Decode(d Dtype, raw []byte, n int) (interface{}, error) {
	if need := n * d.Size; len(raw) < need {
		return nil, fmt.Errorf("decoding %s: need %d bytes for %d elements, have %d", d, need, n, len(raw))
	}

	switch d.Kind {
	case KindBool:
		out := make([]bool, n)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out, nil

	case KindInt:
		out := make([]int64, n)
		for i := range out {
			out[i] = readInt(d, raw[i*d.Size:])
		}
		return out, nil

	case KindUint:
		out := make([]uint64, n)
		for i := range out {
			out[i] = readUint(d, raw[i*d.Size:])
		}
		return out, nil

	case KindFloat:
		out := make([]float64, n)
		for i := range out {
			bits := readUint(d, raw[i*d.Size:])
			if d.Size == 4 {
				out[i] = float64(math.Float32frombits(uint32(bits)))
			} else {
				out[i] = math.Float64frombits(bits)
			}
		}
		return out, nil

	case KindBytes:
		out := make([]string, n)
		for i := range out {
			out[i] = strings.TrimRight(string(raw[i*d.Size:(i+1)*d.Size]), "\x00")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("decoding %s: unsupported kind", d)
	}
}

// Convert decodes raw bytes and assigns the result into dest, which must be
// a pointer to one of the canonical slice types.
func Convert(d Dtype, raw []byte, n int, dest interface{}) error {
	vals, err := Decode(d, raw, n)
	if err != nil {
		return err
	}
	return Assign(vals, dest)
}

// Assign stores a canonical slice into dest (*[]bool, *[]int64, *[]uint64,
// *[]float64 or *[]string). Numeric slices are coerced where the target
// differs from the decoded type.
func Assign(vals interface{}, dest interface{}) error {
	switch p := dest.(type) {
	case *[]float64:
		switch v := vals.(type) {
		case []float64:
			*p = v
		case []int64:
			out := make([]float64, len(v))
			for i, x := range v {
				out[i] = float64(x)
			}
			*p = out
		case []uint64:
			out := make([]float64, len(v))
			for i, x := range v {
				out[i] = float64(x)
			}
			*p = out
		default:
			return fmt.Errorf("cannot convert %T to []float64", vals)
		}
	case *[]int64:
		switch v := vals.(type) {
		case []int64:
			*p = v
		case []uint64:
			out := make([]int64, len(v))
			for i, x := range v {
				out[i] = int64(x)
			}
			*p = out
		default:
			return fmt.Errorf("cannot convert %T to []int64", vals)
		}
	case *[]uint64:
		switch v := vals.(type) {
		case []uint64:
			*p = v
		case []int64:
			out := make([]uint64, len(v))
			for i, x := range v {
				out[i] = uint64(x)
			}
			*p = out
		default:
			return fmt.Errorf("cannot convert %T to []uint64", vals)
		}
	case *[]bool:
		v, ok := vals.([]bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to []bool", vals)
		}
		*p = v
	case *[]string:
		v, ok := vals.([]string)
		if !ok {
			return fmt.Errorf("cannot convert %T to []string", vals)
		}
		*p = v
	case *interface{}:
		*p = vals
	default:
		return fmt.Errorf("unsupported destination type %T", dest)
	}
	return nil
}

// Fill produces a canonical slice of n elements, each set to the scalar
// fill value. The fill value comes from JSON metadata, so numbers arrive
// as float64 and may also be nil, bool or string.
func Fill(d Dtype, fill interface{}, n int) (interface{}, error) {
	switch d.Kind {
	case KindBool:
		out := make([]bool, n)
		if b, ok := fill.(bool); ok && b {
			for i := range out {
				out[i] = true
			}
		}
		return out, nil

	case KindInt:
		out := make([]int64, n)
		if f, ok := fill.(float64); ok && f != 0 {
			v := int64(f)
			for i := range out {
				out[i] = v
			}
		}
		return out, nil

	case KindUint:
		out := make([]uint64, n)
		if f, ok := fill.(float64); ok && f != 0 {
			v := uint64(f)
			for i := range out {
				out[i] = v
			}
		}
		return out, nil

	case KindFloat:
		out := make([]float64, n)
		switch f := fill.(type) {
		case float64:
			if f != 0 {
				for i := range out {
					out[i] = f
				}
			}
		case string:
			// Zarr encodes non-finite fills as "NaN", "Infinity", "-Infinity".
			v, err := nonFinite(f)
			if err != nil {
				return nil, err
			}
			for i := range out {
				out[i] = v
			}
		case nil:
		default:
			return nil, fmt.Errorf("fill value %v (%T) not usable for %s", fill, fill, d)
		}
		return out, nil

	case KindBytes:
		out := make([]string, n)
		if s, ok := fill.(string); ok && s != "" {
			for i := range out {
				out[i] = s
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("fill: unsupported kind %s", d.Kind)
	}
}

func nonFinite(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	default:
		return 0, fmt.Errorf("fill value %q is not a recognized non-finite float", s)
	}
}

func readUint(d Dtype, b []byte) uint64 {
	switch d.Size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(d.Order.Uint16(b))
	case 4:
		return uint64(d.Order.Uint32(b))
	default:
		return d.Order.Uint64(b)
	}
}

func readInt(d Dtype, b []byte) int64 {
	switch d.Size {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(d.Order.Uint16(b)))
	case 4:
		return int64(int32(d.Order.Uint32(b)))
	default:
		return int64(d.Order.Uint64(b))
	}
}
