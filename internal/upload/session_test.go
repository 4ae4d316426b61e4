package upload

import (
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
)

func testFile(name string) File {
	return File{Name: name, Size: 100, Local: blob.Local("h-" + name)}
}

func TestSessionSelectFile(t *testing.T) {
	s := NewSession()
	prev, err := s.SelectFile(testFile("a.png"))
	if err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if prev != nil {
		t.Errorf("Expected no previous file, got %+v", prev)
	}

	prev, err = s.SelectFile(testFile("b.png"))
	if err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if prev == nil || prev.Name != "a.png" {
		t.Errorf("Expected a.png to be superseded, got %+v", prev)
	}

	snap := s.Snapshot()
	if snap.Status != StatusIdle || snap.Progress != 0 || snap.File.Name != "b.png" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
}

func TestSessionBeginWithoutFile(t *testing.T) {
	s := NewSession()
	_, err := s.Begin()
	if !errors.Is(err, ErrNoFileSelected) {
		t.Fatalf("Expected ErrNoFileSelected, got %v", err)
	}
	snap := s.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", snap.Status)
	}
	if snap.ErrorCode != CodeNoFileSelected || snap.Error == "" {
		t.Errorf("Expected no_file_selected error, got %q / %q", snap.ErrorCode, snap.Error)
	}
}

func TestSessionBeginWhileUploading(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	if _, err := s.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	s.Progress(30, 100)

	if _, err := s.Begin(); !errors.Is(err, ErrUploadInProgress) {
		t.Errorf("Expected ErrUploadInProgress, got %v", err)
	}
	if _, err := s.SelectFile(testFile("b.png")); !errors.Is(err, ErrUploadInProgress) {
		t.Errorf("Expected SelectFile to be rejected while uploading, got %v", err)
	}
	if _, err := s.Reset(); !errors.Is(err, ErrUploadInProgress) {
		t.Errorf("Expected Reset to be rejected while uploading, got %v", err)
	}
	if snap := s.Snapshot(); snap.Progress != 30 || snap.Status != StatusUploading {
		t.Errorf("Rejected commands must not touch state, got %+v", snap)
	}
}

func TestSessionProgress(t *testing.T) {
	tests := []struct {
		name     string
		ticks    [][2]int64
		expected []int
	}{
		{
			name:     "in order",
			ticks:    [][2]int64{{10, 100}, {55, 100}, {100, 100}},
			expected: []int{10, 55, 100},
		},
		{
			name:     "duplicate and backwards ticks are clamped",
			ticks:    [][2]int64{{50, 100}, {50, 100}, {20, 100}, {70, 100}},
			expected: []int{50, 50, 50, 70},
		},
		{
			name:     "floor of the percentage",
			ticks:    [][2]int64{{1, 3}, {2, 3}},
			expected: []int{33, 66},
		},
		{
			name:     "unknown total leaves progress unreported",
			ticks:    [][2]int64{{10, -1}, {20, 0}},
			expected: []int{0, 0},
		},
		{
			name:     "overshoot is capped",
			ticks:    [][2]int64{{150, 100}},
			expected: []int{100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.SelectFile(testFile("a.png"))
			s.Begin()
			for i, tick := range tt.ticks {
				s.Progress(tick[0], tick[1])
				if got := s.Snapshot().Progress; got != tt.expected[i] {
					t.Errorf("tick %d: expected %d, got %d", i, tt.expected[i], got)
				}
			}
		})
	}
}

func TestSessionProgressOutsideUpload(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	if s.Progress(50, 100) {
		t.Error("Progress before Begin should be ignored")
	}
}

func TestSessionSucceed(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	s.Begin()
	s.Progress(40, 100)
	s.Succeed(Result{Reference: "a.png", Resource: blob.Remote("http://svc", "a.png")})

	snap := s.Snapshot()
	if snap.Status != StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", snap.Status)
	}
	if snap.Progress != 100 {
		t.Errorf("Expected progress 100, got %d", snap.Progress)
	}
	if snap.Result == nil || snap.Result.Resource.Locator != "http://svc/uploads/a.png" {
		t.Errorf("Unexpected result %+v", snap.Result)
	}
	if snap.Error != "" || snap.ErrorCode != "" {
		t.Errorf("Expected no error, got %q", snap.Error)
	}
}

func TestSessionFailKeepsEarlierResult(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	s.Begin()
	s.Succeed(Result{Reference: "a.png", Resource: blob.Remote("http://svc", "a.png")})

	if _, err := s.Begin(); err != nil {
		t.Fatalf("retry Begin() error = %v", err)
	}
	s.Progress(30, 100)
	s.Fail(errors.Join(ErrTransferFailed, errors.New("connection reset")))

	snap := s.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("Expected failed, got %s", snap.Status)
	}
	if snap.ErrorCode != CodeTransferFailed || snap.Error == "" {
		t.Errorf("Expected transfer_failed error, got %q / %q", snap.ErrorCode, snap.Error)
	}
	if snap.Result == nil || snap.Result.Reference != "a.png" {
		t.Errorf("Expected earlier result to survive, got %+v", snap.Result)
	}
}

func TestSessionMalformedIsTransferFailed(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	s.Begin()
	s.Fail(ErrMalformedResponse)

	snap := s.Snapshot()
	if snap.ErrorCode != CodeTransferFailed {
		t.Errorf("Expected transfer_failed, got %s", snap.ErrorCode)
	}
	if !errors.Is(s.Err(), ErrMalformedResponse) {
		t.Errorf("Expected cause to be preserved, got %v", s.Err())
	}
}

func TestSessionSelectClearsErrorAndResult(t *testing.T) {
	s := NewSession()
	s.Begin()
	s.SelectFile(testFile("a.png"))
	snap := s.Snapshot()
	if snap.Error != "" || snap.Result != nil || snap.Status != StatusIdle {
		t.Errorf("Expected clean idle session, got %+v", snap)
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	s.SelectFile(testFile("a.png"))
	s.Begin()
	s.Succeed(Result{Reference: "a.png"})

	prev, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if prev == nil || prev.Name != "a.png" {
		t.Errorf("Expected a.png to be returned, got %+v", prev)
	}
	snap := s.Snapshot()
	if snap.Status != StatusIdle || snap.File != nil || snap.Result != nil {
		t.Errorf("Expected empty session, got %+v", snap)
	}
}
