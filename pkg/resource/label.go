package resource

import "fmt"

// Label tags resources for bulk destruction. Labels are generation counters:
// a label pushed later always compares greater than one pushed earlier.
type Label uint32

// DefaultLabel is the label in effect when nothing has been pushed.
// Destroying it releases every resource.
const DefaultLabel Label = 0

// LabelStack is a fixed-capacity stack of labels. The top of the stack is
// the label new resources are tagged with.
type LabelStack struct {
	labels  []Label
	counter Label
}

// NewLabelStack creates a label stack holding at most capacity labels.
func NewLabelStack(capacity int) *LabelStack {
	if capacity <= 0 {
		panic(fmt.Sprintf("resource: invalid label stack capacity %d", capacity))
	}
	return &LabelStack{labels: make([]Label, 0, capacity)}
}

// Push generates a new label, pushes it and returns it.
func (s *LabelStack) Push() Label {
	s.counter++
	s.PushLabel(s.counter)
	return s.counter
}

// PushLabel pushes an existing label.
func (s *LabelStack) PushLabel(l Label) {
	if len(s.labels) == cap(s.labels) {
		panic(fmt.Sprintf("resource: label stack overflow (capacity %d)", cap(s.labels)))
	}
	if l > s.counter {
		s.counter = l
	}
	s.labels = append(s.labels, l)
}

// Pop removes and returns the top label.
func (s *LabelStack) Pop() Label {
	if len(s.labels) == 0 {
		panic("resource: pop on empty label stack")
	}
	l := s.labels[len(s.labels)-1]
	s.labels = s.labels[:len(s.labels)-1]
	return l
}

// Peek returns the top label without popping it, or DefaultLabel when the
// stack is empty.
func (s *LabelStack) Peek() Label {
	if len(s.labels) == 0 {
		return DefaultLabel
	}
	return s.labels[len(s.labels)-1]
}

// Len returns the number of pushed labels.
func (s *LabelStack) Len() int {
	return len(s.labels)
}
