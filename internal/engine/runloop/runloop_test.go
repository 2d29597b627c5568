package runloop

import "testing"

func TestRunOrder(t *testing.T) {
	l := New()
	var got []int
	l.Add(func() { got = append(got, 1) })
	l.Add(func() { got = append(got, 2) })

	l.Run()
	l.Run()

	want := []int{1, 2, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestRemove(t *testing.T) {
	l := New()
	calls := 0
	id := l.Add(func() { calls++ })

	if !l.Has(id) {
		t.Fatal("expected callback to be registered")
	}
	l.Run()
	l.Remove(id)
	l.Run()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty run loop, got %d", l.Len())
	}
	l.Remove(id) // already gone
}

func TestRemoveDuringRun(t *testing.T) {
	l := New()
	var second Id
	secondCalls := 0
	l.Add(func() { l.Remove(second) })
	second = l.Add(func() { secondCalls++ })

	l.Run()

	if secondCalls != 0 {
		t.Errorf("removed callback ran %d times", secondCalls)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 callback left, got %d", l.Len())
	}
}

func TestAddDuringRun(t *testing.T) {
	l := New()
	innerCalls := 0
	registered := false
	l.Add(func() {
		if !registered {
			registered = true
			l.Add(func() { innerCalls++ })
		}
	})

	l.Run()
	if innerCalls != 0 {
		t.Fatalf("callback added during Run must wait for the next Run, ran %d times", innerCalls)
	}
	l.Run()
	if innerCalls != 1 {
		t.Errorf("expected added callback to run once, got %d", innerCalls)
	}
}
