package view

import (
	"fmt"
	"math"
	"sync"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/transform"
)

// Flags gate optional viewer features.
type Flags struct {
	ShowZoomControls bool
	EnableCompare    bool
}

// DefaultFlags enables everything.
func DefaultFlags() Flags {
	return Flags{ShowZoomControls: true, EnableCompare: true}
}

// SlotView is the render model of one slot.
type SlotView struct {
	Index     int             `json:"index"`
	Resolved  bool            `json:"resolved"`
	Resource  *blob.Resource  `json:"resource,omitempty"`
	Transform transform.State `json:"transform"`
	Controls  bool            `json:"controls"`
}

// CSS renders the transform as a CSS transform value.
func (s SlotView) CSS() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", s.Transform.Offset.X, s.Transform.Offset.Y, s.Transform.Scale)
}

// Composer serializes transform commands for one configuration.
type Composer struct {
	ID    string
	flags Flags

	mu     sync.Mutex
	config *Configuration
}

// NewComposer wraps cfg.
func NewComposer(id string, cfg *Configuration, flags Flags) *Composer {
	return &Composer{ID: id, config: cfg, flags: flags}
}

// Mode returns the layout mode.
func (c *Composer) Mode() Mode {
	return c.config.Mode
}

// Slots returns the render model of every slot. Unresolved slots carry no
// transform controls.
func (c *Composer) Slots() []SlotView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SlotView, len(c.config.Slots))
	for i, s := range c.config.Slots {
		out[i] = c.slotView(i, s)
	}
	return out
}

// Do runs cmd against one slot and returns its new state.
func (c *Composer) Do(slot int, cmd Command) (SlotView, error) {
	return c.with(slot, func(e *transform.Engine) error {
		switch cmd {
		case ZoomIn:
			e.ZoomIn()
		case ZoomOut:
			e.ZoomOut()
		case Reset:
			e.Reset()
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
		}
		return nil
	})
}

// Gesture applies a pan/pinch update to one slot.
func (c *Composer) Gesture(slot int, g transform.Gesture) (SlotView, error) {
	return c.with(slot, func(e *transform.Engine) error {
		e.Apply(g)
		return nil
	})
}

// SlotAt maps a horizontal cursor position, as a fraction of the viewer
// width, to the slot under it. Slots split the viewer into equal columns.
func (c *Composer) SlotAt(x float64) int {
	n := len(c.config.Slots)
	if n <= 1 || math.IsNaN(x) {
		return 0
	}
	i := int(math.Floor(x * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Wheel forwards a page-level wheel event to the slot under the cursor.
func (c *Composer) Wheel(x, deltaY float64) (SlotView, error) {
	return c.with(c.SlotAt(x), func(e *transform.Engine) error {
		e.Wheel(deltaY)
		return nil
	})
}

func (c *Composer) with(slot int, fn func(*transform.Engine) error) (SlotView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.config.Slots) {
		return SlotView{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	s := c.config.Slots[slot]
	if !s.Resolved() {
		return c.slotView(slot, s), ErrEmptySlot
	}
	if err := fn(s.Transform); err != nil {
		return SlotView{}, err
	}
	return c.slotView(slot, s), nil
}

func (c *Composer) slotView(i int, s *Slot) SlotView {
	v := SlotView{Index: i, Transform: transform.Default()}
	if !s.Resolved() {
		return v
	}
	r := *s.Resource
	v.Resolved = true
	v.Resource = &r
	v.Transform = s.Transform.State()
	v.Controls = c.flags.ShowZoomControls
	return v
}
