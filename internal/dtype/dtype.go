package dtype

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Kind identifies the broad class of a Zarr element type.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBytes
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Dtype describes the element type of a Zarr array.
type Dtype struct {
	Kind  Kind
	Size  int              // bytes per element
	Order binary.ByteOrder // nil for single-byte and bytes kinds
}

// String reconstructs a NumPy-style dtype string.
func (d Dtype) String() string {
	var order byte
	switch {
	case d.Order == binary.BigEndian:
		order = '>'
	case d.Order == binary.LittleEndian:
		order = '<'
	default:
		order = '|'
	}
	var code byte
	switch d.Kind {
	case KindBool:
		code = 'b'
	case KindInt:
		code = 'i'
	case KindUint:
		code = 'u'
	case KindFloat:
		code = 'f'
	case KindBytes:
		code = 'S'
	}
	return fmt.Sprintf("%c%c%d", order, code, d.Size)
}

// Parse parses a NumPy-style dtype string ("<f8", ">u2", "|b1", "|S16").
func Parse(s string) (Dtype, error) {
	if len(s) < 3 {
		return Dtype{}, fmt.Errorf("dtype %q too short", s)
	}

	var order binary.ByteOrder
	switch s[0] {
	case '<':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	case '|':
		order = nil
	default:
		return Dtype{}, fmt.Errorf("dtype %q: unknown byte order %q", s, s[0])
	}

	size, err := strconv.Atoi(s[2:])
	if err != nil || size <= 0 {
		return Dtype{}, fmt.Errorf("dtype %q: invalid element size", s)
	}

	var kind Kind
	switch s[1] {
	case 'b':
		kind = KindBool
		if size != 1 {
			return Dtype{}, fmt.Errorf("dtype %q: boolean must be 1 byte", s)
		}
	case 'i':
		kind = KindInt
	case 'u':
		kind = KindUint
	case 'f':
		kind = KindFloat
	case 'S':
		kind = KindBytes
	default:
		return Dtype{}, fmt.Errorf("dtype %q: unsupported type code %q", s, s[1])
	}

	switch kind {
	case KindInt, KindUint:
		if size != 1 && size != 2 && size != 4 && size != 8 {
			return Dtype{}, fmt.Errorf("dtype %q: unsupported integer size %d", s, size)
		}
	case KindFloat:
		if size != 4 && size != 8 {
			return Dtype{}, fmt.Errorf("dtype %q: unsupported float size %d", s, size)
		}
	}

	// Multi-byte numerics need an explicit byte order.
	if order == nil && kind != KindBool && kind != KindBytes && size > 1 {
		return Dtype{}, fmt.Errorf("dtype %q: multi-byte type needs a byte order", s)
	}

	return Dtype{Kind: kind, Size: size, Order: order}, nil
}
