package spatialdata

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// SpatialData is the composite dataset assembled by one read: five
// element mappings keyed by top-level group name, plus at most one
// annotation table. The snapshot exclusively owns its elements; treat it
// as read-only.
//
// Iteration order of the underlying store is not guaranteed stable
// across store implementations; consumers must not depend on which of
// several declared tables survives (last processed wins).
type SpatialData struct {
	Images   map[string]ImageElement
	Labels   map[string]ImageElement
	Points   map[string]*PointsElement
	Polygons map[string]*GeometryCollection
	Shapes   map[string]*ShapesElement
	Table    *AnnotationTable
}

// Option configures a read.
type Option func(*readOptions)

type readOptions struct {
	format Format
	strict bool
}

// WithFormat sets the format version token used while decoding.
func WithFormat(f Format) Option {
	return func(o *readOptions) { o.format = f }
}

// WithStrictMetadata validates each node's multiscales metadata block
// against the format's JSON schema before assembly.
func WithStrictMetadata() Option {
	return func(o *readOptions) { o.strict = true }
}

// accumulator is the per-read collection state threaded through the
// walk. Nothing is shared across concurrent reads.
type accumulator struct {
	images   map[string]ImageElement
	labels   map[string]ImageElement
	points   map[string]*PointsElement
	polygons map[string]*GeometryCollection
	shapes   map[string]*ShapesElement
	table    *AnnotationTable
}

func newAccumulator() *accumulator {
	return &accumulator{
		images:   map[string]ImageElement{},
		labels:   map[string]ImageElement{},
		points:   map[string]*PointsElement{},
		polygons: map[string]*GeometryCollection{},
		shapes:   map[string]*ShapesElement{},
	}
}

// newSpatialData finalizes an accumulator into the immutable snapshot.
// Pure aggregation; no decoding.
func newSpatialData(acc *accumulator) *SpatialData {
	return &SpatialData{
		Images:   acc.images,
		Labels:   acc.labels,
		Points:   acc.points,
		Polygons: acc.polygons,
		Shapes:   acc.shapes,
		Table:    acc.table,
	}
}

// Read opens the store at path and reconstructs the composite dataset.
//
// Top-level groups are visited in store enumeration order. A group whose
// node bears no recognized markers contributes nothing and is skipped
// silently; a missing labels subtree or missing secondary groups are
// likewise tolerated. Structural inconsistencies and malformed attribute
// records abort the whole read: there is no partial-result mode.
func Read(path string, opts ...Option) (*SpatialData, error) {
	o := &readOptions{format: DefaultFormat()}
	for _, opt := range opts {
		opt(o)
	}

	store, err := zarr.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	root := store.Root()
	names, err := root.Children()
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	for _, name := range names {
		g, err := root.OpenGroup(name)
		if err != nil {
			// Top-level datasets are not samples.
			if errors.Is(err, zarr.ErrNotGroup) {
				continue
			}
			return nil, err
		}
		if err := readSample(acc, name, g, o); err != nil {
			return nil, err
		}
	}

	return newSpatialData(acc), nil
}

// readSample processes one top-level group: the image candidate at the
// group itself, the labels subtree, and the secondary role groups.
func readSample(acc *accumulator, key string, g *zarr.Group, o *readOptions) error {
	node, err := newNode(g)
	if err != nil {
		return fmt.Errorf("element %q: %w", key, err)
	}

	if Classify(node) == KindImage {
		if err := checkStrict(node, o); err != nil {
			return fmt.Errorf("element %q: %w", key, err)
		}
		el, err := readMultiscale(node, o.format)
		if err != nil {
			return fmt.Errorf("element %q: %w", key, err)
		}
		acc.images[key] = el
	}

	if err := readSampleLabels(acc, key, g, o); err != nil {
		return err
	}

	children, err := g.Children()
	if err != nil {
		return fmt.Errorf("element %q: %w", key, err)
	}
	for _, child := range children {
		switch child {
		case "points":
			sub, err := g.OpenGroup(child)
			if err != nil {
				return fmt.Errorf("points %q: %w", key, err)
			}
			el, err := readPoints(sub, o.format)
			if err != nil {
				return fmt.Errorf("points %q: %w", key, err)
			}
			acc.points[key] = el

		case "polygons":
			sub, err := g.OpenGroup(child)
			if err != nil {
				return fmt.Errorf("polygons %q: %w", key, err)
			}
			el, err := readPolygons(sub, o.format)
			if err != nil {
				return fmt.Errorf("polygons %q: %w", key, err)
			}
			acc.polygons[key] = el

		case "shapes":
			sub, err := g.OpenGroup(child)
			if err != nil {
				return fmt.Errorf("shapes %q: %w", key, err)
			}
			el, err := readShapes(sub, o.format)
			if err != nil {
				return fmt.Errorf("shapes %q: %w", key, err)
			}
			acc.shapes[key] = el

		case "table":
			sub, err := g.OpenGroup(child)
			if err != nil {
				return fmt.Errorf("table %q: %w", key, err)
			}
			t, err := readTable(sub)
			if err != nil {
				return fmt.Errorf("table %q: %w", key, err)
			}
			// Only one table survives a read; last processed wins.
			acc.table = t
		}
	}

	return nil
}

// readSampleLabels probes the labels subtree. Its absence is not an
// error: label maps are sparse by design. Nodes under labels must bear
// both the multiscale and the label marker to be collected.
func readSampleLabels(acc *accumulator, key string, g *zarr.Group, o *readOptions) error {
	if !g.Exists("labels") {
		return nil
	}
	lg, err := g.OpenGroup("labels")
	if err != nil {
		return fmt.Errorf("labels %q: %w", key, err)
	}

	names, err := labelNames(lg)
	if err != nil {
		return fmt.Errorf("labels %q: %w", key, err)
	}

	for _, name := range names {
		sub, err := lg.OpenGroup(name)
		if err != nil {
			if errors.Is(err, zarr.ErrNotFound) || errors.Is(err, zarr.ErrNotGroup) {
				continue
			}
			return fmt.Errorf("labels %q: %w", key, err)
		}
		node, err := newNode(sub)
		if err != nil {
			return fmt.Errorf("labels %q: %w", key, err)
		}
		if Classify(node) != KindLabel {
			continue
		}
		if err := checkStrict(node, o); err != nil {
			return fmt.Errorf("labels %q: %w", key, err)
		}
		el, err := readMultiscale(node, o.format)
		if err != nil {
			return fmt.Errorf("labels %q: %w", key, err)
		}
		acc.labels[key] = el
	}
	return nil
}

// labelNames lists the label elements a labels group declares: the
// "labels" attribute when present, otherwise the group's children.
func labelNames(lg *zarr.Group) ([]string, error) {
	attrs, err := lg.Attrs()
	if err != nil {
		return nil, err
	}
	if declared, ok := attrs["labels"].([]interface{}); ok {
		out := make([]string, 0, len(declared))
		for _, d := range declared {
			if s, ok := d.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return lg.Children()
}

// checkStrict runs schema validation on the node's multiscales block
// when strict metadata mode is on.
func checkStrict(node *Node, o *readOptions) error {
	if !o.strict {
		return nil
	}
	return validateMultiscales(node.attrs[multiscalesKey])
}
