// If you are AI: This file defines the immutable topic descriptor and the
// frame value type flowing through the bus (spec.md §3).

package frame

import (
	"fmt"
	"strings"

	"framebus/internal/dtype"
)

// Descriptor is a topic's immutable shape/type declaration. It is fixed at
// publisher construction and discovered by subscribers via the metadata
// region.
type Descriptor struct {
	Name  string
	Shape []int
	DType dtype.Type
}

// FrameBytes returns product(shape) * sizeof(dtype), the fixed size of every
// published frame's payload.
func (d Descriptor) FrameBytes() int {
	n := d.DType.Size()
	for _, dim := range d.Shape {
		n *= dim
	}
	return n
}

// String renders the descriptor as "name(d0xd1x...,dtype)" for logs.
func (d Descriptor) String() string {
	dims := make([]string, len(d.Shape))
	for i, dim := range d.Shape {
		dims[i] = fmt.Sprintf("%d", dim)
	}
	return fmt.Sprintf("%s(%s,%s)", d.Name, strings.Join(dims, "x"), d.DType)
}

// Frame is one publication: a fixed-size byte payload plus an opaque,
// producer-assigned timestamp. The timestamp is not interpreted by the core.
type Frame struct {
	Bytes     []byte
	Timestamp uint64
}

// Clone returns a deep copy of f, safe to retain past the caller's read
// critical section.
func (f Frame) Clone() Frame {
	b := make([]byte, len(f.Bytes))
	copy(b, f.Bytes)
	return Frame{Bytes: b, Timestamp: f.Timestamp}
}
