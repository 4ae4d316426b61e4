// Package upload tracks a single file transfer to the processing service:
// selection, progress, and the terminal success or failure state.
package upload

import (
	"context"
	"io"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// File is the user-selected content.
type File struct {
	Name string
	// Size in bytes, -1 when unknown.
	Size int64
	// Local is the resource displaying the original file.
	Local blob.Resource
	// Open returns a fresh reader over the content for each attempt.
	Open func() (io.ReadCloser, error)
}

// Result is what a successful transfer yields.
type Result struct {
	Resource  blob.Resource `json:"resource"`
	Reference string        `json:"processed_image"`
	Original  string        `json:"original_image,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// ProgressFunc receives byte counts while the payload is sent. total is
// negative when the transport cannot know it.
type ProgressFunc func(sent, total int64)

// Transport submits a file to the processing service.
//
// Implementations call progress from a single goroutine and never after
// Upload returns. Errors wrap ErrTransferFailed or ErrMalformedResponse.
type Transport interface {
	Upload(ctx context.Context, file File, progress ProgressFunc) (Result, error)
}

// FileInfo is the display view of the selected file.
type FileInfo struct {
	Name    string        `json:"name"`
	Size    int64         `json:"size"`
	Preview blob.Resource `json:"preview"`
}

// Snapshot is an immutable copy of session state for rendering.
type Snapshot struct {
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	File      *FileInfo `json:"file,omitempty"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Result    *Result   `json:"result,omitempty"`
}
