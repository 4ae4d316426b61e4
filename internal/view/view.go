// Package view binds image resources to independent transform engines and
// lays them out as a single viewer or a side-by-side comparison.
package view

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/transform"
)

// Mode selects the layout.
type Mode string

const (
	ModeSingle  Mode = "single"
	ModeCompare Mode = "compare"
)

var (
	ErrUnknownMode    = errors.New("view: unknown mode")
	ErrSlotOutOfRange = errors.New("view: slot out of range")
	ErrUnknownCommand = errors.New("view: unknown command")
	ErrEmptySlot      = errors.New("view: slot has no image")
)

// Command is a transform control exposed per slot.
type Command string

const (
	ZoomIn  Command = "zoom-in"
	ZoomOut Command = "zoom-out"
	Reset   Command = "reset"
)

// SlotCount returns how many slots a mode lays out.
func (m Mode) SlotCount() (int, error) {
	switch m {
	case ModeSingle:
		return 1, nil
	case ModeCompare:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
}

// Slot pairs an optional resource with its own transform.
type Slot struct {
	Resource  *blob.Resource
	Transform *transform.Engine
}

// Resolved reports whether the slot has an image to display.
func (s *Slot) Resolved() bool {
	return s.Resource != nil && s.Resource.Locator != ""
}

// Configuration is the ordered set of slots for a mode.
type Configuration struct {
	Mode  Mode
	Slots []*Slot
}

// NewConfiguration lays out resources for mode. Missing resources become
// empty slots; extra resources are ignored.
func NewConfiguration(mode Mode, resources ...blob.Resource) (*Configuration, error) {
	n, err := mode.SlotCount()
	if err != nil {
		return nil, err
	}
	cfg := &Configuration{Mode: mode, Slots: make([]*Slot, n)}
	for i := range cfg.Slots {
		slot := &Slot{}
		if i < len(resources) && resources[i].Locator != "" {
			r := resources[i]
			slot.Resource = &r
			slot.Transform = transform.New()
		}
		cfg.Slots[i] = slot
	}
	return cfg, nil
}
