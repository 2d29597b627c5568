package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func feed(in *Input, events ...sdl.Event) {
	in.beginFrame()
	for _, ev := range events {
		if e, ok := translate(ev); ok {
			in.handle(e)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   sdl.Event
		want Event
		ok   bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F12}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_F12}, true},
		{"key up", &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
			Event{Type: EventKeyUp, Key: sdl.SCANCODE_A}, true},
		{"resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			Event{Type: EventWindowResize, Width: 800, Height: 600}, true},
		{"other window event", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED},
			Event{}, false},
		{"motion", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: 3, YRel: -2},
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: 3, DeltaY: -2}, true},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1},
			Event{Type: EventMouseWheel, DeltaY: -1}, true},
		{"button up", &sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_RIGHT, X: 1, Y: 2},
			Event{Type: EventMouseUp, Button: sdl.BUTTON_RIGHT, MouseX: 1, MouseY: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translate(tt.ev)
			if ok != tt.ok || got != tt.want {
				t.Errorf("translate = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDragAccumulatesWhileHeld(t *testing.T) {
	in := New(sdl.BUTTON_LEFT)

	feed(in,
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 50},
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 4, YRel: 1},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 2, YRel: 1},
	)
	dx, dy, ok := in.Drag()
	if !ok || dx != 6 || dy != 2 {
		t.Errorf("Drag = %d, %d, %v; want 6, 2, true", dx, dy, ok)
	}

	// The button stays held across frames.
	feed(in, &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, YRel: 3})
	if dx, dy, _ = in.Drag(); dx != 0 || dy != 3 {
		t.Errorf("second frame Drag = %d, %d; want 0, 3", dx, dy)
	}

	feed(in,
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 9},
	)
	if _, _, ok = in.Drag(); ok || in.Dragging() {
		t.Error("motion after release should not drag")
	}
}

func TestOtherButtonDoesNotDrag(t *testing.T) {
	in := New(sdl.BUTTON_LEFT)
	feed(in,
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_RIGHT},
		&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 5},
	)
	if _, _, ok := in.Drag(); ok {
		t.Error("right button should not drag")
	}
}

func TestFrameState(t *testing.T) {
	in := New(sdl.BUTTON_LEFT)
	feed(in,
		&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 1},
		&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2},
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 320, Data2: 200},
		&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 400},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_F12}},
	)

	if in.Wheel() != 3 {
		t.Errorf("Wheel = %d, want 3", in.Wheel())
	}
	if w, h, ok := in.Resized(); !ok || w != 640 || h != 400 {
		t.Errorf("Resized = %d, %d, %v; want 640, 400, true", w, h, ok)
	}
	if !in.IsKeyPressed(sdl.SCANCODE_F12) || in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("IsKeyPressed mismatch")
	}
	if len(in.Events()) != 5 {
		t.Errorf("Events = %d, want 5", len(in.Events()))
	}

	feed(in)
	if in.Wheel() != 0 || in.IsKeyPressed(sdl.SCANCODE_F12) {
		t.Error("frame state should reset")
	}
	if _, _, ok := in.Resized(); ok {
		t.Error("Resized should reset")
	}
}

func TestQuit(t *testing.T) {
	in := New(sdl.BUTTON_LEFT)
	feed(in, &sdl.QuitEvent{Type: sdl.QUIT})
	if !in.quit {
		t.Error("quit not recorded")
	}
}
