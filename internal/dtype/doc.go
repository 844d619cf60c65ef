// Package dtype provides Zarr dtype handling and Go type conversion.
//
// Zarr v2 describes array element types with NumPy-style dtype strings
// such as "<f8" or ">u2". This package parses those strings and converts
// raw chunk bytes into Go slices.
//
// # Type Mapping Strategy
//
// Decoded values are widened to a small set of canonical Go slice types so
// that callers never have to dispatch on element width:
//
//	Dtype kind        | Go Type
//	------------------|------------------
//	Boolean (|b1)     | []bool
//	Signed integer    | []int64 (any width)
//	Unsigned integer  | []uint64 (any width)
//	Floating-point    | []float64 (float32 widened)
//	Fixed bytes (|Sn) | []string (NUL-trimmed ASCII)
//
// # Key Functions
//
//   - [Parse]: Parses a dtype string into a [Dtype]
//   - [Decode]: Converts raw chunk bytes to a canonical Go slice
//   - [Convert]: Decodes and assigns into a caller-supplied slice pointer
//   - [Fill]: Produces a canonical slice filled with a scalar fill value
package dtype
