package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func id(slot uint16) Id {
	return Id{Stamp: uint32(slot) + 1, SlotIndex: slot, Type: testType}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(8)
	r.Add(NewLocator("mesh:quad"), id(0), DefaultLabel)

	assert.Equal(t, id(0), r.Lookup(NewLocator("mesh:quad")))
	assert.Equal(t, InvalidId, r.Lookup(NewLocator("mesh:cube")))
	assert.Equal(t, InvalidId, r.Lookup(NewLocatorSig("mesh:quad", 2)))
}

func TestRegistryDuplicateLocatorPanics(t *testing.T) {
	r := NewRegistry(8)
	r.Add(NewLocator("tex"), id(0), DefaultLabel)

	assert.Panics(t, func() { r.Add(NewLocator("tex"), id(1), DefaultLabel) })
}

func TestRegistryNonSharedNeverDedupes(t *testing.T) {
	r := NewRegistry(8)
	r.Add(NonShared(), id(0), DefaultLabel)
	r.Add(NonShared(), id(1), DefaultLabel)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, InvalidId, r.Lookup(NonShared()))
	assert.True(t, r.Contains(id(1)))
}

func TestRegistryRemoveLabelAndLater(t *testing.T) {
	stack := NewLabelStack(4)
	r := NewRegistry(8)

	p1 := stack.Push()
	r.Add(NewLocator("a"), id(0), stack.Peek())
	p2 := stack.Push()
	r.Add(NewLocator("b"), id(1), stack.Peek())
	stack.Push()
	r.Add(NewLocator("c"), id(2), stack.Peek())
	r.Add(NewLocator("d"), id(3), stack.Peek())

	removed := r.Remove(p2)

	assert.Equal(t, []Id{id(3), id(2), id(1)}, removed)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, id(0), r.Lookup(NewLocator("a")))
	assert.Equal(t, InvalidId, r.Lookup(NewLocator("b")))

	// The locator is free again once its resource is gone.
	assert.NotPanics(t, func() { r.Add(NewLocator("b"), id(4), p1) })
}

func TestRegistryRemoveDefaultLabelRemovesAll(t *testing.T) {
	stack := NewLabelStack(2)
	r := NewRegistry(4)
	r.Add(NewLocator("a"), id(0), DefaultLabel)
	r.Add(NewLocator("b"), id(1), stack.Push())

	assert.Len(t, r.Remove(DefaultLabel), 2)
	assert.Equal(t, 0, r.Len())
}

func TestLabelStack(t *testing.T) {
	s := NewLabelStack(2)
	assert.Equal(t, DefaultLabel, s.Peek())

	a := s.Push()
	b := s.Push()
	assert.Greater(t, b, a)
	assert.Equal(t, b, s.Peek())
	assert.Panics(t, func() { s.Push() })

	assert.Equal(t, b, s.Pop())
	assert.Equal(t, a, s.Pop())
	assert.Panics(t, func() { s.Pop() })

	// Labels keep growing after pops.
	assert.Greater(t, s.Push(), b)
}
