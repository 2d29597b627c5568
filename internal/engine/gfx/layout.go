package gfx

import "fmt"

// MaxVertexComponents is the maximum number of components in a layout.
const MaxVertexComponents = NumVertexAttrs

// VertexComponent is one attribute of an interleaved vertex.
type VertexComponent struct {
	Attr   VertexAttr
	Format VertexFormat
}

// VertexLayout describes an interleaved vertex. Components are packed
// without padding in the order they were added.
type VertexLayout struct {
	Components   []VertexComponent
	StepFunction StepFunction
	StepRate     int
}

// NewVertexLayout builds a per-vertex layout from components.
func NewVertexLayout(comps ...VertexComponent) VertexLayout {
	var l VertexLayout
	for _, c := range comps {
		l.Add(c.Attr, c.Format)
	}
	return l
}

// Add appends a component. Adding the same attribute twice or more than
// MaxVertexComponents components panics.
func (l *VertexLayout) Add(attr VertexAttr, format VertexFormat) *VertexLayout {
	if len(l.Components) >= MaxVertexComponents {
		panic("gfx: too many vertex components")
	}
	if l.Contains(attr) {
		panic(fmt.Sprintf("gfx: vertex attribute %s added twice", attr))
	}
	l.Components = append(l.Components, VertexComponent{Attr: attr, Format: format})
	return l
}

// Empty reports whether the layout has no components.
func (l VertexLayout) Empty() bool {
	return len(l.Components) == 0
}

// NumComponents returns the number of components.
func (l VertexLayout) NumComponents() int {
	return len(l.Components)
}

// ByteSize returns the size of one vertex, which is also the stride.
func (l VertexLayout) ByteSize() int {
	size := 0
	for _, c := range l.Components {
		size += c.Format.ByteSize()
	}
	return size
}

// ComponentByteOffset returns the offset of component i inside a vertex.
func (l VertexLayout) ComponentByteOffset(i int) int {
	offset := 0
	for _, c := range l.Components[:i] {
		offset += c.Format.ByteSize()
	}
	return offset
}

// ComponentIndexByAttr returns the index of the component for attr, or -1.
func (l VertexLayout) ComponentIndexByAttr(attr VertexAttr) int {
	for i, c := range l.Components {
		if c.Attr == attr {
			return i
		}
	}
	return -1
}

// Contains reports whether attr is part of the layout.
func (l VertexLayout) Contains(attr VertexAttr) bool {
	return l.ComponentIndexByAttr(attr) >= 0
}

// Divisor returns the attribute divisor the layout's step function implies.
func (l VertexLayout) Divisor() int {
	if l.StepFunction == PerInstance {
		return max(1, l.StepRate)
	}
	return 0
}

// PrimitiveGroup is a range of vertices or indices drawn with one call.
type PrimitiveGroup struct {
	PrimType    PrimitiveType
	BaseElement int
	NumElements int
}
