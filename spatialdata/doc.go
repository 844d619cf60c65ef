// Package spatialdata reconstructs composite multi-modality spatial
// datasets from Zarr directory stores.
//
// A store holds one top-level group per sample. Each sample group may
// carry a multiscale image pyramid, a labels subtree with segmentation
// pyramids, and secondary groups for points, polygons, shapes and a
// tabular annotation block. None of these are mandatory and the on-disk
// metadata is only loosely schematized, so reconstruction is best-effort:
// optional parts that are absent are tolerated, while internally
// inconsistent metadata (transformation counts that disagree with
// resolution levels, geometry type codes that disagree with their stored
// names) aborts the whole read.
//
// The entry point is [Read]:
//
//	sd, err := spatialdata.Read("/data/sample.zarr")
//	if err != nil { ... }
//	for name, img := range sd.Images {
//	    switch el := img.(type) {
//	    case *spatialdata.LabeledArray:   // single resolution
//	    case *spatialdata.Multiscale:     // pyramid, finest level first
//	    }
//	}
package spatialdata
