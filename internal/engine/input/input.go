// Package input turns SDL2 events into per-frame input state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event is one translated SDL event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int // relative motion, or wheel scroll
	DeltaY int
	Button uint8
}

// Input collects the events of one frame and derives drag, wheel and
// resize state from them.
type Input struct {
	events     []Event
	dragButton uint8
	dragging   bool
	dragX      int
	dragY      int
	wheel      int
	width      int
	height     int
	resized    bool
	quit       bool
}

// New creates an input handler that reports drags made with dragButton,
// e.g. sdl.BUTTON_LEFT.
func New(dragButton uint8) *Input {
	return &Input{
		events:     make([]Event, 0, 16),
		dragButton: dragButton,
	}
}

// Update drains the SDL event queue. It returns true once a quit was
// requested.
func (i *Input) Update() bool {
	i.beginFrame()
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		if e, ok := translate(ev); ok {
			i.handle(e)
		}
	}
	return i.quit
}

func (i *Input) beginFrame() {
	i.events = i.events[:0]
	i.dragX, i.dragY = 0, 0
	i.wheel = 0
	i.resized = false
}

func (i *Input) handle(e Event) {
	i.events = append(i.events, e)
	switch e.Type {
	case EventQuit:
		i.quit = true
	case EventWindowResize:
		i.width, i.height, i.resized = e.Width, e.Height, true
	case EventMouseDown:
		if e.Button == i.dragButton {
			i.dragging = true
		}
	case EventMouseUp:
		if e.Button == i.dragButton {
			i.dragging = false
		}
	case EventMouseMove:
		if i.dragging {
			i.dragX += e.DeltaX
			i.dragY += e.DeltaY
		}
	case EventMouseWheel:
		i.wheel += e.DeltaY
	}
}

func translate(ev sdl.Event) (Event, bool) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		case sdl.KEYUP:
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DeltaX: int(e.XRel),
			DeltaY: int(e.YRel),
		}, true

	case *sdl.MouseWheelEvent:
		return Event{Type: EventMouseWheel, DeltaX: int(e.X), DeltaY: int(e.Y)}, true

	case *sdl.MouseButtonEvent:
		t := EventMouseDown
		if e.Type == sdl.MOUSEBUTTONUP {
			t = EventMouseUp
		}
		return Event{Type: t, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Drag returns the motion accumulated this frame while the drag button
// was held.
func (i *Input) Drag() (dx, dy int, ok bool) {
	return i.dragX, i.dragY, i.dragX != 0 || i.dragY != 0
}

// Dragging reports whether the drag button is currently held.
func (i *Input) Dragging() bool {
	return i.dragging
}

// Wheel returns the vertical wheel scroll of this frame.
func (i *Input) Wheel() int {
	return i.wheel
}

// Resized returns the last window size reported this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
