package gfx

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// UniformComponent is one named, typed uniform inside a block.
type UniformComponent struct {
	Name string
	Type UniformType
}

// UniformLayout describes the byte layout of a uniform block. Components
// are packed without padding; values are uploaded one by one so no GPU
// block alignment applies.
type UniformLayout struct {
	components []UniformComponent
	offsets    []int
	byteSize   int
	typeHash   uint64
}

// NewUniformLayout builds a layout and computes its type hash.
func NewUniformLayout(comps ...UniformComponent) UniformLayout {
	l := UniformLayout{
		components: make([]UniformComponent, 0, len(comps)),
		offsets:    make([]int, 0, len(comps)),
	}
	h := fnv.New64a()
	for _, c := range comps {
		if l.ComponentIndex(c.Name) >= 0 {
			panic(fmt.Sprintf("gfx: uniform %q declared twice", c.Name))
		}
		l.components = append(l.components, c)
		l.offsets = append(l.offsets, l.byteSize)
		l.byteSize += c.Type.ByteSize()
		h.Write([]byte(c.Name))
		h.Write([]byte{0, byte(c.Type)})
	}
	l.typeHash = h.Sum64()
	return l
}

// TypeHash identifies the layout. Blocks built from a layout carry the same
// hash, which the renderer checks against the bound program.
func (l UniformLayout) TypeHash() uint64 {
	return l.typeHash
}

// ByteSize returns the total block size.
func (l UniformLayout) ByteSize() int {
	return l.byteSize
}

// NumComponents returns the number of components.
func (l UniformLayout) NumComponents() int {
	return len(l.components)
}

// ComponentAt returns component i.
func (l UniformLayout) ComponentAt(i int) UniformComponent {
	return l.components[i]
}

// ComponentByteOffset returns the offset of component i.
func (l UniformLayout) ComponentByteOffset(i int) int {
	return l.offsets[i]
}

// ComponentIndex returns the index of the named component, or -1.
func (l UniformLayout) ComponentIndex(name string) int {
	for i, c := range l.components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// UniformBlock is a typed byte buffer matching a UniformLayout. Values are
// stored little endian.
type UniformBlock struct {
	layout UniformLayout
	data   []byte
}

// NewUniformBlock allocates a zeroed block for layout.
func NewUniformBlock(layout UniformLayout) *UniformBlock {
	return &UniformBlock{layout: layout, data: make([]byte, layout.ByteSize())}
}

// Layout returns the layout the block was built from.
func (b *UniformBlock) Layout() UniformLayout {
	return b.layout
}

// TypeHash returns the layout hash.
func (b *UniformBlock) TypeHash() uint64 {
	return b.layout.TypeHash()
}

// Bytes returns the raw block data.
func (b *UniformBlock) Bytes() []byte {
	return b.data
}

func (b *UniformBlock) slot(name string, typ UniformType) []byte {
	i := b.layout.ComponentIndex(name)
	if i < 0 {
		panic(fmt.Sprintf("gfx: uniform block has no component %q", name))
	}
	if c := b.layout.ComponentAt(i); c.Type != typ {
		panic(fmt.Sprintf("gfx: uniform %q is %s, not %s", name, c.Type, typ))
	}
	off := b.layout.ComponentByteOffset(i)
	return b.data[off : off+typ.ByteSize()]
}

// SetFloat sets a float component.
func (b *UniformBlock) SetFloat(name string, v float32) *UniformBlock {
	putFloats(b.slot(name, UniformFloat), v)
	return b
}

// SetVec2 sets a vec2 component.
func (b *UniformBlock) SetVec2(name string, v mgl32.Vec2) *UniformBlock {
	putFloats(b.slot(name, UniformVec2), v[:]...)
	return b
}

// SetVec3 sets a vec3 component.
func (b *UniformBlock) SetVec3(name string, v mgl32.Vec3) *UniformBlock {
	putFloats(b.slot(name, UniformVec3), v[:]...)
	return b
}

// SetVec4 sets a vec4 component.
func (b *UniformBlock) SetVec4(name string, v mgl32.Vec4) *UniformBlock {
	putFloats(b.slot(name, UniformVec4), v[:]...)
	return b
}

// SetMat2 sets a column-major mat2 component.
func (b *UniformBlock) SetMat2(name string, m mgl32.Mat2) *UniformBlock {
	putFloats(b.slot(name, UniformMat2), m[:]...)
	return b
}

// SetMat3 sets a column-major mat3 component.
func (b *UniformBlock) SetMat3(name string, m mgl32.Mat3) *UniformBlock {
	putFloats(b.slot(name, UniformMat3), m[:]...)
	return b
}

// SetMat4 sets a column-major mat4 component.
func (b *UniformBlock) SetMat4(name string, m mgl32.Mat4) *UniformBlock {
	putFloats(b.slot(name, UniformMat4), m[:]...)
	return b
}

// SetBool sets a bool component, stored as int32.
func (b *UniformBlock) SetBool(name string, v bool) *UniformBlock {
	var i uint32
	if v {
		i = 1
	}
	binary.LittleEndian.PutUint32(b.slot(name, UniformBool), i)
	return b
}

// SetTexture sets a texture component to a texture resource Id.
func (b *UniformBlock) SetTexture(name string, tex resource.Id) *UniformBlock {
	binary.LittleEndian.PutUint64(b.slot(name, UniformTexture), tex.Pack())
	return b
}

func putFloats(dst []byte, vals ...float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getFloats(src []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
