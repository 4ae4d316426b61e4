package storage

import (
	"fmt"
	"testing"

	"github.com/lehigh-university-libraries/scanview/internal/view"
)

func composer(t *testing.T, id string) *view.Composer {
	t.Helper()
	cfg, err := view.NewConfiguration(view.ModeSingle)
	if err != nil {
		t.Fatalf("NewConfiguration() error = %v", err)
	}
	return view.NewComposer(id, cfg, view.DefaultFlags())
}

func TestViewStoreSetGet(t *testing.T) {
	s := New(4)
	s.Set("a", composer(t, "a"))

	c, ok := s.Get("a")
	if !ok || c.ID != "a" {
		t.Errorf("Expected composer a, got %v (ok=%v)", c, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Expected missing view to be absent")
	}
}

func TestViewStoreEvictsOldest(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("v%d", i)
		s.Set(id, composer(t, id))
	}
	if s.Len() != 3 {
		t.Errorf("Expected 3 views, got %d", s.Len())
	}
	for _, id := range []string{"v0", "v1"} {
		if _, ok := s.Get(id); ok {
			t.Errorf("Expected %s to be evicted", id)
		}
	}
	if _, ok := s.Get("v4"); !ok {
		t.Error("Expected newest view to be kept")
	}
}

func TestViewStoreDelete(t *testing.T) {
	s := New(0)
	s.Set("a", composer(t, "a"))
	s.Delete("a")
	s.Delete("a")
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
}
