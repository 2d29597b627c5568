package resource

import "fmt"

// Slot is one pool entry: identity, lifecycle state, the setup the resource
// was created from and the backend payload. The pool owns the slot; pointers
// to it stay stable for the pool's lifetime but must not be used after the
// slot's Id stops being contained.
type Slot[S any, P any] struct {
	Id      Id
	State   State
	Setup   S
	Payload P
}

// Pool is a fixed-capacity array of resource slots for one resource type.
// It is not safe for concurrent use.
type Pool[S any, P any] struct {
	resType   Type
	slots     []Slot[S, P]
	freeSlots []uint16
	released  []uint16
	stamp     uint32
}

// NewPool creates a pool of the given type with size slots.
func NewPool[S any, P any](resType Type, size int) *Pool[S, P] {
	if resType == InvalidType {
		panic("resource: pool needs a valid resource type")
	}
	if size <= 0 || size > 1<<16 {
		panic(fmt.Sprintf("resource: invalid pool size %d", size))
	}
	p := &Pool[S, P]{
		resType:   resType,
		slots:     make([]Slot[S, P], size),
		freeSlots: make([]uint16, 0, size),
	}
	// Hand out low slot indices first.
	for i := size - 1; i >= 0; i-- {
		p.freeSlots = append(p.freeSlots, uint16(i))
	}
	return p
}

// Type returns the resource type of the pool.
func (p *Pool[S, P]) Type() Type {
	return p.resType
}

// Capacity returns the number of slots.
func (p *Pool[S, P]) Capacity() int {
	return len(p.slots)
}

// AllocId reserves a free slot and returns a fresh Id for it. The slot
// belongs to the Id in state Initial until Assign or Unassign. Running out
// of slots is fatal: pool sizes are fixed when the pool is set up.
func (p *Pool[S, P]) AllocId() Id {
	if len(p.freeSlots) == 0 {
		p.recycle()
	}
	if len(p.freeSlots) == 0 {
		panic(fmt.Sprintf("resource: pool of type %d exhausted (%d slots)", p.resType, len(p.slots)))
	}
	idx := p.freeSlots[len(p.freeSlots)-1]
	p.freeSlots = p.freeSlots[:len(p.freeSlots)-1]
	p.stamp++
	id := Id{Stamp: p.stamp, SlotIndex: idx, Type: p.resType}
	p.slots[idx] = Slot[S, P]{Id: id, State: Initial}
	return id
}

// Assign binds setup and state to the slot reserved for id and returns the
// slot for the factory to fill in.
func (p *Pool[S, P]) Assign(id Id, setup S, state State) *Slot[S, P] {
	p.checkId(id)
	slot := &p.slots[id.SlotIndex]
	if slot.Id != id && slot.Id.IsValid() {
		panic(fmt.Sprintf("resource: slot %d is owned by %s, cannot assign %s", id.SlotIndex, slot.Id, id))
	}
	slot.Id = id
	slot.Setup = setup
	slot.State = state
	return slot
}

// UpdateState changes the state of a live slot.
func (p *Pool[S, P]) UpdateState(id Id, state State) {
	if !p.Contains(id) {
		panic(fmt.Sprintf("resource: update state of unknown %s", id))
	}
	p.slots[id.SlotIndex].State = state
}

// Unassign clears the slot of id, assigned or only reserved, and parks it
// for reuse. Stale Ids are ignored.
func (p *Pool[S, P]) Unassign(id Id) {
	if !p.Contains(id) {
		return
	}
	p.slots[id.SlotIndex] = Slot[S, P]{}
	p.released = append(p.released, id.SlotIndex)
}

// Update returns the slots released since the last call to the free list.
func (p *Pool[S, P]) Update() {
	p.recycle()
}

func (p *Pool[S, P]) recycle() {
	p.freeSlots = append(p.freeSlots, p.released...)
	p.released = p.released[:0]
}

// Contains reports whether id refers to the current occupant of its slot.
func (p *Pool[S, P]) Contains(id Id) bool {
	if id.Type != p.resType || int(id.SlotIndex) >= len(p.slots) {
		return false
	}
	return p.slots[id.SlotIndex].Id == id
}

// Get returns the slot of id in any state, or nil.
func (p *Pool[S, P]) Get(id Id) *Slot[S, P] {
	if !p.Contains(id) {
		return nil
	}
	return &p.slots[id.SlotIndex]
}

// Lookup returns the slot of id if it is Valid, or nil.
func (p *Pool[S, P]) Lookup(id Id) *Slot[S, P] {
	slot := p.Get(id)
	if slot == nil || slot.State != Valid {
		return nil
	}
	return slot
}

// QueryState returns the state of id, or InvalidState.
func (p *Pool[S, P]) QueryState(id Id) State {
	if !p.Contains(id) {
		return InvalidState
	}
	return p.slots[id.SlotIndex].State
}

// QueryResourceInfo describes id.
func (p *Pool[S, P]) QueryResourceInfo(id Id) Info {
	return Info{Id: id, State: p.QueryState(id)}
}

// QueryPoolInfo walks all slots and builds a state histogram. Free and
// reserved slots both count as Initial.
func (p *Pool[S, P]) QueryPoolInfo() PoolInfo {
	info := PoolInfo{
		ResourceType: p.resType,
		NumSlots:     len(p.slots),
	}
	for i := range p.slots {
		info.NumSlotsByState[p.slots[i].State]++
	}
	info.NumFreeSlots = p.NumFreeSlots()
	info.NumUsedSlots = info.NumSlots - info.NumFreeSlots
	return info
}

// NumFreeSlots returns the number of slots AllocId can still hand out.
func (p *Pool[S, P]) NumFreeSlots() int {
	return len(p.freeSlots) + len(p.released)
}

func (p *Pool[S, P]) checkId(id Id) {
	if id.Type != p.resType || int(id.SlotIndex) >= len(p.slots) {
		panic(fmt.Sprintf("resource: %s does not belong to pool of type %d", id, p.resType))
	}
}
