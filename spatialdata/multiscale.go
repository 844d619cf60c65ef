package spatialdata

import (
	"fmt"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// LabeledArray is one resolution level of an image or label element: an
// N-dimensional array with named axes and its own coordinate transform.
type LabeledArray struct {
	Name      string
	Data      *zarr.Array
	Axes      []string
	Transform Transform
}

// Multiscale is a resolution pyramid, finest level first. Levels carry
// independent transforms; they are not required to share one.
type Multiscale struct {
	name   string
	keys   []string
	levels []*LabeledArray
}

// Name returns the element name.
func (m *Multiscale) Name() string { return m.name }

// Keys returns the synthetic level keys ("scale0", "scale1", ...) in
// resolution order, finest first.
func (m *Multiscale) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Levels returns the resolution levels, finest first.
func (m *Multiscale) Levels() []*LabeledArray {
	out := make([]*LabeledArray, len(m.levels))
	copy(out, m.levels)
	return out
}

// Level returns the level stored under a synthetic key.
func (m *Multiscale) Level(key string) (*LabeledArray, bool) {
	for i, k := range m.keys {
		if k == key {
			return m.levels[i], true
		}
	}
	return nil, false
}

// NumLevels returns the number of resolution levels.
func (m *Multiscale) NumLevels() int { return len(m.levels) }

// ImageElement is either a single-resolution *LabeledArray or a
// *Multiscale pyramid. A node with exactly one declared resolution
// dataset always decodes to the bare array, never to a one-level
// pyramid, so callers must handle both shapes.
type ImageElement interface {
	imageElement()
}

func (*LabeledArray) imageElement() {}
func (*Multiscale) imageElement()   {}

// msDataset is one declared resolution dataset entry.
type msDataset struct {
	path      string
	transform map[string]interface{} // first transformation record, nil if absent
}

// parseDatasets extracts the resolution dataset entries from a
// multiscales record.
func parseDatasets(ms map[string]interface{}) ([]msDataset, error) {
	list, ok := ms["datasets"].([]interface{})
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: multiscales entry has no datasets", ErrMalformedAttributes)
	}

	out := make([]msDataset, 0, len(list))
	for i, e := range list {
		rec, ok := e.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: dataset entry %d is not a record", ErrMalformedAttributes, i)
		}
		path, ok := rec["path"].(string)
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: dataset entry %d has no path", ErrMalformedAttributes, i)
		}

		ds := msDataset{path: path}
		if cts, ok := rec["coordinateTransformations"].([]interface{}); ok && len(cts) > 0 {
			first, ok := cts[0].(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: dataset %q transformation is not a record", ErrMalformedAttributes, path)
			}
			ds.transform = first
		}
		out = append(out, ds)
	}
	return out, nil
}

// parseAxes extracts ordered axis names. Current metadata stores axes as
// records with a "name" field; legacy stores used bare strings. Both are
// accepted.
func parseAxes(ms map[string]interface{}) ([]string, error) {
	raw, ok := ms["axes"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: axes is not a list", ErrMalformedAttributes)
	}

	out := make([]string, 0, len(list))
	for i, e := range list {
		switch v := e.(type) {
		case string:
			out = append(out, v)
		case map[string]interface{}:
			name, ok := v["name"].(string)
			if !ok {
				return nil, fmt.Errorf("%w: axis %d has no name", ErrMalformedAttributes, i)
			}
			out = append(out, name)
		default:
			return nil, fmt.Errorf("%w: axis %d is %T", ErrMalformedAttributes, i, e)
		}
	}
	return out, nil
}

// readMultiscale reconstructs an image or label element from a classified
// node: one decoded transformation per declared resolution dataset, the
// array data at each resolution, and the ordered axis names. A single
// declared dataset yields a bare *LabeledArray; several yield a
// *Multiscale keyed "scale0"..."scaleN", finest first.
func readMultiscale(n *Node, f Format) (ImageElement, error) {
	ms, err := n.multiscale()
	if err != nil {
		return nil, err
	}

	datasets, err := parseDatasets(ms)
	if err != nil {
		return nil, err
	}
	axes, err := parseAxes(ms)
	if err != nil {
		return nil, err
	}

	name := n.Name()
	if s, ok := ms["name"].(string); ok && s != "" {
		name = s
	}

	// One transformation per dataset; entries without one are simply not
	// counted, which is what trips the invariant below.
	transforms := make([]Transform, 0, len(datasets))
	for _, ds := range datasets {
		if ds.transform == nil {
			continue
		}
		t, err := DecodeTransform(ds.transform, f)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", ds.path, err)
		}
		transforms = append(transforms, t)
	}
	if len(transforms) != len(datasets) {
		return nil, fmt.Errorf("%w: expecting one transformation per dataset (%d transformations for %d datasets)",
			ErrStructuralMismatch, len(transforms), len(datasets))
	}

	levels := make([]*LabeledArray, len(datasets))
	for i, ds := range datasets {
		arr, err := n.group.OpenDataset(ds.path)
		if err != nil {
			return nil, fmt.Errorf("resolution %q: %w", ds.path, err)
		}
		data, err := arr.ReadArray()
		if err != nil {
			return nil, fmt.Errorf("resolution %q: %w", ds.path, err)
		}
		levels[i] = &LabeledArray{
			Name:      name,
			Data:      data,
			Axes:      axes,
			Transform: transforms[i],
		}
	}

	if len(levels) == 1 {
		return levels[0], nil
	}

	keys := make([]string, len(levels))
	for i := range levels {
		keys[i] = fmt.Sprintf("scale%d", i)
	}
	return &Multiscale{name: name, keys: keys, levels: levels}, nil
}
