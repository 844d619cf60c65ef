// Package zarr provides a pure Go implementation for reading Zarr v2
// directory stores.
package zarr

import "errors"

// Common errors
var (
	ErrNotZarr     = errors.New("not a zarr store")
	ErrNotFound    = errors.New("node not found")
	ErrNotDataset  = errors.New("node is not a dataset")
	ErrNotGroup    = errors.New("node is not a group")
	ErrUnsupported = errors.New("unsupported feature")
	ErrClosed      = errors.New("store is closed")
)
