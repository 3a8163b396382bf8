package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	in := New()

	if in.translate(&sdl.MouseMotionEvent{XRel: 4, YRel: 2}) {
		t.Fatal("motion should not quit")
	}
	if len(in.Events()) != 0 {
		t.Fatalf("motion without a held button produced %d events", len(in.Events()))
	}

	in.translate(&sdl.MouseButtonEvent{Button: sdl.BUTTON_LEFT, State: sdl.PRESSED})
	in.translate(&sdl.MouseMotionEvent{XRel: 4, YRel: -2})
	in.translate(&sdl.MouseButtonEvent{Button: sdl.BUTTON_LEFT, State: sdl.RELEASED})
	in.translate(&sdl.MouseMotionEvent{XRel: 9, YRel: 9})
	in.translate(&sdl.MouseWheelEvent{Y: -1})

	events := in.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Type != EventDrag || events[0].DX != 4 || events[0].DY != -2 {
		t.Errorf("drag event = %+v", events[0])
	}
	if events[1].Type != EventWheel || events[1].DY != -1 {
		t.Errorf("wheel event = %+v", events[1])
	}
}

func TestTranslateClick(t *testing.T) {
	in := New()
	in.translate(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.PRESSED, X: 10, Y: 20})
	in.translate(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.RELEASED, X: 10, Y: 20})

	events := in.Events()
	if len(events) != 1 || events[0].Type != EventClick || events[0].X != 10 || events[0].Y != 20 {
		t.Errorf("events = %+v, want one click at (10, 20)", events)
	}
}

func TestTranslateQuit(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
	}{
		{"quit", &sdl.QuitEvent{}},
		{"escape", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			if !in.translate(tt.event) {
				t.Error("expected quit")
			}
		})
	}
}

func TestIsKeyPressed(t *testing.T) {
	in := New()
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_G}})
	in.translate(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_H}})

	if !in.IsKeyPressed(sdl.SCANCODE_G) {
		t.Error("G should be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_H) {
		t.Error("key up should not count as pressed")
	}
}
