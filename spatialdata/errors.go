package spatialdata

import "errors"

// Common errors
var (
	// ErrStructuralMismatch reports internally inconsistent element
	// metadata: a transformation count that disagrees with the declared
	// resolution datasets, or a geometry type code that disagrees with its
	// stored name. It is fatal for the whole read.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrMalformedAttributes reports an attribute record whose shape is
	// not decodable (missing keys, wrong JSON types). Fatal.
	ErrMalformedAttributes = errors.New("malformed attributes")

	// ErrUnsupportedGeometry reports a geometry type the ragged decoder
	// cannot reconstruct (multi-part and collection types).
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
)
