package testutil

import "github.com/ashrindy/dvscenetool/internal/timeline"

// Press is the frame the primary button goes down at (x, y).
func Press(x, y float32) timeline.Input {
	return timeline.Input{Pos: timeline.Vec2{X: x, Y: y}, Down: true, Pressed: true}
}

// Hold is a frame with the primary button still down at (x, y).
func Hold(x, y float32) timeline.Input {
	return timeline.Input{Pos: timeline.Vec2{X: x, Y: y}, Down: true}
}

// Release is the frame the primary button goes up at (x, y).
func Release(x, y float32) timeline.Input {
	return timeline.Input{Pos: timeline.Vec2{X: x, Y: y}, Released: true}
}

// Hover is a frame with the pointer at (x, y) and no button activity.
func Hover(x, y float32) timeline.Input {
	return timeline.Input{Pos: timeline.Vec2{X: x, Y: y}}
}

// Scroll is a hover frame with wheel steps; ctrl turns it into a zoom.
func Scroll(x, y, steps float32, ctrl bool) timeline.Input {
	in := Hover(x, y)
	in.Wheel = steps
	in.Ctrl = ctrl
	return in
}

// Drag returns the frames of a full drag from (x0, y) to (x1, y) in
// steps equal moves: a press, one hold per step and a release.
func Drag(x0, x1, y float32, steps int) []timeline.Input {
	if steps < 1 {
		steps = 1
	}
	out := []timeline.Input{Press(x0, y)}
	for i := 1; i <= steps; i++ {
		x := x0 + (x1-x0)*float32(i)/float32(steps)
		out = append(out, Hold(x, y))
	}
	return append(out, Release(x1, y))
}
