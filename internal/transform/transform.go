package transform

// Zoom step applied by every discrete zoom command.
const Step = 0.1

// MinScale is the floor no operation may drive the scale below.
const MinScale = 0.1

// epsilon absorbs float drift from repeated 0.1 steps (0.1+0.1+0.1 != 0.3).
const epsilon = 1e-9

// Offset is a 2D translation in CSS pixels.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is the scale/offset pair of one displayed image.
type State struct {
	Scale  float64 `json:"scale"`
	Offset Offset  `json:"offset"`
}

// Default returns the identity transform.
func Default() State {
	return State{Scale: 1.0}
}

// Gesture is a pan/pinch update reported by the client-side gesture layer.
// Factor multiplies the current scale; zero means no pinch.
type Gesture struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Factor float64 `json:"scale"`
}

// Engine holds the transform of one viewer slot. It is not safe for
// concurrent use; callers serialize access.
type Engine struct {
	state State
}

// New returns an engine at the identity transform.
func New() *Engine {
	return &Engine{state: Default()}
}

// State returns a copy of the current transform.
func (e *Engine) State() State {
	return e.state
}

// ZoomIn increases the scale by one step. There is no upper bound.
func (e *Engine) ZoomIn() {
	e.state.Scale += Step
}

// ZoomOut decreases the scale by one step, but only while the scale is
// above the floor. A step that would land below the floor is dropped.
func (e *Engine) ZoomOut() {
	if e.state.Scale <= MinScale+epsilon {
		return
	}
	next := e.state.Scale - Step
	if next < MinScale-epsilon {
		return
	}
	if next < MinScale {
		next = MinScale
	}
	e.state.Scale = next
}

// Wheel maps wheel input onto the discrete zoom step: scrolling up
// (negative deltaY) zooms in, anything else zooms out.
func (e *Engine) Wheel(deltaY float64) {
	if deltaY < 0 {
		e.ZoomIn()
		return
	}
	e.ZoomOut()
}

// Reset restores the identity transform.
func (e *Engine) Reset() {
	e.state = Default()
}

// Pan translates the image.
func (e *Engine) Pan(dx, dy float64) {
	e.state.Offset.X += dx
	e.state.Offset.Y += dy
}

// Pinch multiplies the scale by factor, clamped to the floor.
// Non-positive factors are ignored.
func (e *Engine) Pinch(factor float64) {
	if factor <= 0 {
		return
	}
	e.state.Scale *= factor
	if e.state.Scale < MinScale {
		e.state.Scale = MinScale
	}
}

// Apply applies a gesture update: pan first, then pinch.
func (e *Engine) Apply(g Gesture) {
	e.Pan(g.DX, g.DY)
	if g.Factor != 0 {
		e.Pinch(g.Factor)
	}
}
