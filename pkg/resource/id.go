// Package resource provides the generic building blocks for pooled,
// handle-addressed resources: Ids, lifecycle states, labels, locators,
// the locator registry and fixed-capacity slot pools.
package resource

import "fmt"

// Type tags the kind of resource an Id refers to.
type Type uint16

// InvalidType marks the invalid Id. It is the zero value so that a zero Id
// is never mistaken for a live resource.
const InvalidType Type = 0

// Id identifies a pooled resource. Ids are plain values: cheap to copy,
// comparable with ==, and never owning. The Stamp is unique per allocation
// inside a pool, so an Id whose slot has been recycled never matches again.
type Id struct {
	Stamp     uint32
	SlotIndex uint16
	Type      Type
}

// InvalidId is the invalid sentinel.
var InvalidId = Id{}

// IsValid reports whether the Id carries a resource type.
func (id Id) IsValid() bool {
	return id.Type != InvalidType
}

// String implements fmt.Stringer.
func (id Id) String() string {
	if !id.IsValid() {
		return "Id(invalid)"
	}
	return fmt.Sprintf("Id(type=%d slot=%d stamp=%d)", id.Type, id.SlotIndex, id.Stamp)
}

// Pack encodes the Id into 64 bits: stamp in the high 32, slot index and
// type in the low 32.
func (id Id) Pack() uint64 {
	return uint64(id.Stamp)<<32 | uint64(id.SlotIndex)<<16 | uint64(id.Type)
}

// UnpackId decodes an Id produced by Pack.
func UnpackId(v uint64) Id {
	return Id{
		Stamp:     uint32(v >> 32),
		SlotIndex: uint16(v >> 16),
		Type:      Type(v),
	}
}
