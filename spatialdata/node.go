package spatialdata

import (
	"fmt"

	"github.com/robert-malhotra/go-spatialdata/zarr"
)

// Attribute keys acting as capability markers on a node.
const (
	multiscalesKey = "multiscales"
	labelKey       = "image-label"
)

// Node is an ephemeral view of a store group during a read pass: its
// attributes plus the capability markers it declares. Nodes exist only
// while a read is in flight.
type Node struct {
	group *zarr.Group
	attrs map[string]interface{}

	hasMultiscales bool
	hasLabel       bool
}

// newNode opens a group's attributes and records its declared markers.
func newNode(g *zarr.Group) (*Node, error) {
	attrs, err := g.Attrs()
	if err != nil {
		return nil, err
	}
	_, hasMS := attrs[multiscalesKey]
	_, hasLabel := attrs[labelKey]
	return &Node{group: g, attrs: attrs, hasMultiscales: hasMS, hasLabel: hasLabel}, nil
}

// Name returns the node's group name.
func (n *Node) Name() string {
	return n.group.Name()
}

// Path returns the node's store path.
func (n *Node) Path() string {
	return n.group.Path()
}

// multiscale returns the first entry of the node's multiscales metadata
// block as a record.
func (n *Node) multiscale() (map[string]interface{}, error) {
	list, ok := n.attrs[multiscalesKey].([]interface{})
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%w: multiscales block is empty or not a list", ErrMalformedAttributes)
	}
	ms, ok := list[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: multiscales entry is not a record", ErrMalformedAttributes)
	}
	return ms, nil
}
