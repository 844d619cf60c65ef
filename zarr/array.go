package zarr

// Array holds a fully assembled N-dimensional array: a shape and a flat
// C-order slice of canonical element values ([]bool, []int64, []uint64,
// []float64 or []string).
type Array struct {
	Shape []int
	Elems interface{}
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Shape)
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Float64s returns the elements as []float64, or nil if the array holds a
// different canonical type.
func (a *Array) Float64s() []float64 {
	v, _ := a.Elems.([]float64)
	return v
}

// Int64s returns the elements as []int64, or nil.
func (a *Array) Int64s() []int64 {
	v, _ := a.Elems.([]int64)
	return v
}

// Uint64s returns the elements as []uint64, or nil.
func (a *Array) Uint64s() []uint64 {
	v, _ := a.Elems.([]uint64)
	return v
}

// Bools returns the elements as []bool, or nil.
func (a *Array) Bools() []bool {
	v, _ := a.Elems.([]bool)
	return v
}

// Strings returns the elements as []string, or nil.
func (a *Array) Strings() []string {
	v, _ := a.Elems.([]string)
	return v
}

// ByteSize estimates the in-memory size of the element data.
func (a *Array) ByteSize() uint64 {
	switch v := a.Elems.(type) {
	case []bool:
		return uint64(len(v))
	case []string:
		var n uint64
		for _, s := range v {
			n += uint64(len(s)) + 16
		}
		return n
	default:
		return uint64(a.Len()) * 8
	}
}
