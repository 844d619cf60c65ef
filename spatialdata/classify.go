package spatialdata

import "fmt"

// ElementKind is the classification of a node's role in the dataset.
type ElementKind int

const (
	// KindUnclassified marks a node that is not an element of this model.
	KindUnclassified ElementKind = iota

	// KindImage marks a plain multiscale image pyramid.
	KindImage

	// KindLabel marks an integer label-map pyramid.
	KindLabel
)

// String returns a human-readable kind name.
func (k ElementKind) String() string {
	switch k {
	case KindUnclassified:
		return "unclassified"
	case KindImage:
		return "image"
	case KindLabel:
		return "label"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Classify decides a node's role from its declared capability markers:
// a node with a multiscales marker and no label marker is an image; one
// with both markers is a label map; anything else is not an element of
// this model. Pure decision function; callers handle skipping.
func Classify(n *Node) ElementKind {
	switch {
	case n.hasMultiscales && !n.hasLabel:
		return KindImage
	case n.hasMultiscales && n.hasLabel:
		return KindLabel
	default:
		return KindUnclassified
	}
}
