package view

import (
	"errors"
	"math"
	"testing"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/transform"
)

func compareComposer(t *testing.T) *Composer {
	t.Helper()
	cfg, err := NewConfiguration(ModeCompare,
		blob.Local("8d9e0c76-2f3b-4a8e-9b41-2c8f2e7f0a11"),
		blob.Remote("http://localhost:5000", "processed_a.png"),
	)
	if err != nil {
		t.Fatalf("NewConfiguration() error = %v", err)
	}
	return NewComposer("cmp", cfg, DefaultFlags())
}

func TestNewConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		resources []blob.Resource
		slots     int
		resolved  int
		wantErr   error
	}{
		{name: "single with image", mode: ModeSingle, resources: []blob.Resource{blob.Remote("http://svc", "a.png")}, slots: 1, resolved: 1},
		{name: "single without image", mode: ModeSingle, slots: 1, resolved: 0},
		{name: "compare with one image", mode: ModeCompare, resources: []blob.Resource{blob.Remote("http://svc", "a.png")}, slots: 2, resolved: 1},
		{name: "extra resources ignored", mode: ModeSingle, resources: []blob.Resource{blob.Remote("http://svc", "a.png"), blob.Remote("http://svc", "b.png")}, slots: 1, resolved: 1},
		{name: "unknown mode", mode: Mode("grid"), wantErr: ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfiguration(tt.mode, tt.resources...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConfiguration() error = %v", err)
			}
			if len(cfg.Slots) != tt.slots {
				t.Errorf("Expected %d slots, got %d", tt.slots, len(cfg.Slots))
			}
			resolved := 0
			for _, s := range cfg.Slots {
				if s.Resolved() {
					resolved++
				}
			}
			if resolved != tt.resolved {
				t.Errorf("Expected %d resolved slots, got %d", tt.resolved, resolved)
			}
		})
	}
}

func TestCompareSlotsAreIndependent(t *testing.T) {
	c := compareComposer(t)

	if _, err := c.Do(0, ZoomIn); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if _, err := c.Gesture(0, transform.Gesture{DX: 15, DY: 5}); err != nil {
		t.Fatalf("Gesture() error = %v", err)
	}

	slots := c.Slots()
	if math.Abs(slots[0].Transform.Scale-1.1) > 1e-9 {
		t.Errorf("Expected slot 0 scale 1.1, got %v", slots[0].Transform.Scale)
	}
	if slots[1].Transform != transform.Default() {
		t.Errorf("Expected slot 1 untouched, got %+v", slots[1].Transform)
	}
}

func TestWheelRoutesToSlotUnderCursor(t *testing.T) {
	c := compareComposer(t)

	tests := []struct {
		x    float64
		slot int
	}{
		{x: 0.1, slot: 0},
		{x: 0.49, slot: 0},
		{x: 0.5, slot: 1},
		{x: 0.99, slot: 1},
		{x: 1.5, slot: 1},
		{x: -0.2, slot: 0},
	}
	for _, tt := range tests {
		if got := c.SlotAt(tt.x); got != tt.slot {
			t.Errorf("SlotAt(%v): expected %d, got %d", tt.x, tt.slot, got)
		}
	}

	v, err := c.Wheel(0.75, -100)
	if err != nil {
		t.Fatalf("Wheel() error = %v", err)
	}
	if v.Index != 1 || math.Abs(v.Transform.Scale-1.1) > 1e-9 {
		t.Errorf("Expected slot 1 zoomed in, got %+v", v)
	}
	if c.Slots()[0].Transform.Scale != 1.0 {
		t.Error("Expected slot 0 to stay at 1.0")
	}
}

func TestEmptySlotHasNoControls(t *testing.T) {
	cfg, _ := NewConfiguration(ModeCompare, blob.Remote("http://svc", "a.png"))
	c := NewComposer("x", cfg, DefaultFlags())

	slots := c.Slots()
	if slots[1].Resolved || slots[1].Controls || slots[1].Resource != nil {
		t.Errorf("Expected empty slot without controls, got %+v", slots[1])
	}
	if _, err := c.Do(1, ZoomIn); !errors.Is(err, ErrEmptySlot) {
		t.Errorf("Expected ErrEmptySlot, got %v", err)
	}
}

func TestDoErrors(t *testing.T) {
	c := compareComposer(t)
	if _, err := c.Do(2, ZoomIn); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("Expected ErrSlotOutOfRange, got %v", err)
	}
	if _, err := c.Do(0, Command("spin")); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestFlagsHideControls(t *testing.T) {
	cfg, _ := NewConfiguration(ModeSingle, blob.Remote("http://svc", "a.png"))
	c := NewComposer("x", cfg, Flags{ShowZoomControls: false})
	if c.Slots()[0].Controls {
		t.Error("Expected controls hidden by flag")
	}
}

func TestSlotViewCSS(t *testing.T) {
	v := SlotView{Transform: transform.State{Scale: 1.5, Offset: transform.Offset{X: 10, Y: -4}}}
	if got := v.CSS(); got != "translate(10px, -4px) scale(1.5)" {
		t.Errorf("Unexpected CSS %q", got)
	}
}
