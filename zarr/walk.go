package zarr

import (
	"errors"
	gopath "path"
)

// ErrStopWalk stops a Walk early from inside the callback. Walk itself
// returns nil in that case; check with errors.Is when wrapping it.
var ErrStopWalk = errors.New("stop walking")

// WalkFunc is called once per node. obj is either *Group or *Dataset;
// err carries any failure opening the node, with obj nil. Returning a
// non-nil error aborts the walk.
type WalkFunc func(path string, obj interface{}, err error) error

// Walk visits every group and dataset under g depth-first, the starting
// group included, children in sorted order.
func Walk(g *Group, fn WalkFunc) error {
	err := walk(g, fn)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	children, err := g.Children()
	if err != nil {
		return err
	}

	for _, name := range children {
		childPath := gopath.Join(g.Path(), name)

		if sub, err := g.OpenGroup(name); err == nil {
			if err := walk(sub, fn); err != nil {
				return err
			}
			continue
		}

		ds, err := g.OpenDataset(name)
		if err != nil {
			// Neither group nor dataset opened; let the callback decide.
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}
		if err := fn(childPath, ds, nil); err != nil {
			return err
		}
	}

	return nil
}
