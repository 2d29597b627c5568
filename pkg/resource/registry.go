package resource

import "fmt"

type registryEntry struct {
	locator Locator
	id      Id
	label   Label
}

// Registry maps locators to Ids and remembers the label every resource was
// created under. Entries are kept in creation order.
type Registry struct {
	entries []registryEntry
	shared  map[Locator]Id
}

// NewRegistry creates a registry sized for capacity entries. The capacity is
// a hint; the registry grows if needed.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		entries: make([]registryEntry, 0, capacity),
		shared:  make(map[Locator]Id, capacity),
	}
}

// Add records a new resource. Adding a shared locator that is already
// present is a programming error: callers must Lookup first.
func (r *Registry) Add(loc Locator, id Id, label Label) {
	if !id.IsValid() {
		panic("resource: registry add with invalid id")
	}
	if loc.IsShared() {
		if _, exists := r.shared[loc]; exists {
			panic(fmt.Sprintf("resource: locator %s already registered", loc))
		}
		r.shared[loc] = id
	}
	r.entries = append(r.entries, registryEntry{locator: loc, id: id, label: label})
}

// Lookup returns the Id registered for a shared locator, or InvalidId.
func (r *Registry) Lookup(loc Locator) Id {
	if !loc.IsShared() {
		return InvalidId
	}
	return r.shared[loc]
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id Id) bool {
	for i := range r.entries {
		if r.entries[i].id == id {
			return true
		}
	}
	return false
}

// LocatorOf returns the locator id was registered with.
func (r *Registry) LocatorOf(id Id) (Locator, bool) {
	for i := range r.entries {
		if r.entries[i].id == id {
			return r.entries[i].locator, true
		}
	}
	return Locator{}, false
}

// Remove drops every entry tagged with label or with any label pushed after
// it, and returns their Ids newest first, so resources are released before
// the resources they were built from.
func (r *Registry) Remove(label Label) []Id {
	var removed []Id
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.label >= label {
			removed = append(removed, e.id)
			if e.locator.IsShared() {
				delete(r.shared, e.locator)
			}
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept

	for i, j := 0, len(removed)-1; i < j; i, j = i+1, j-1 {
		removed[i], removed[j] = removed[j], removed[i]
	}
	return removed
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	return len(r.entries)
}
