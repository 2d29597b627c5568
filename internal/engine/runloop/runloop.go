// Package runloop provides the per-frame callback scheduler. Components get
// a *RunLoop at construction, register their update and remove it when they
// are torn down.
package runloop

// Id identifies a registered callback.
type Id uint32

// InvalidId is never returned by Add.
const InvalidId Id = 0

type entry struct {
	id      Id
	fn      func()
	removed bool
}

// RunLoop calls its registered callbacks once per Run, in registration
// order. It is driven from the frame thread and not safe for concurrent
// use.
type RunLoop struct {
	entries []entry
	nextId  Id
	running bool
	dirty   bool
}

// New creates an empty run loop.
func New() *RunLoop {
	return &RunLoop{}
}

// Add registers fn and returns its Id. Callbacks added during Run start
// running with the next Run.
func (l *RunLoop) Add(fn func()) Id {
	if fn == nil {
		panic("runloop: nil callback")
	}
	l.nextId++
	l.entries = append(l.entries, entry{id: l.nextId, fn: fn})
	return l.nextId
}

// Remove unregisters a callback. Unknown Ids are ignored. A callback removed
// during Run is not called anymore in that Run.
func (l *RunLoop) Remove(id Id) {
	for i := range l.entries {
		if l.entries[i].id == id && !l.entries[i].removed {
			l.entries[i].removed = true
			l.dirty = true
			break
		}
	}
	if !l.running {
		l.compact()
	}
}

// Has reports whether id is registered.
func (l *RunLoop) Has(id Id) bool {
	for _, e := range l.entries {
		if e.id == id && !e.removed {
			return true
		}
	}
	return false
}

// Len returns the number of registered callbacks.
func (l *RunLoop) Len() int {
	n := 0
	for _, e := range l.entries {
		if !e.removed {
			n++
		}
	}
	return n
}

// Run calls every registered callback once.
func (l *RunLoop) Run() {
	l.running = true
	n := len(l.entries)
	for i := 0; i < n; i++ {
		if !l.entries[i].removed {
			l.entries[i].fn()
		}
	}
	l.running = false
	l.compact()
}

func (l *RunLoop) compact() {
	if !l.dirty {
		return
	}
	kept := l.entries[:0]
	for _, e := range l.entries {
		if !e.removed {
			kept = append(kept, e)
		}
	}
	clear(l.entries[len(kept):])
	l.entries = kept
	l.dirty = false
}
