package upload

import "errors"

// Upload errors. Transport implementations wrap ErrTransferFailed or
// ErrMalformedResponse so the session can classify failures with errors.Is.
var (
	// ErrNoFileSelected indicates beginUpload was called before a file was selected.
	ErrNoFileSelected = errors.New("upload: no file selected")

	// ErrTransferFailed indicates a network error, timeout or non-2xx response.
	ErrTransferFailed = errors.New("upload: transfer failed")

	// ErrMalformedResponse indicates a 2xx response without a usable processed image reference.
	ErrMalformedResponse = errors.New("upload: malformed response")

	// ErrUploadInProgress rejects commands that would interleave with the outstanding upload.
	ErrUploadInProgress = errors.New("upload: upload already in progress")
)

// ErrorCode is the user-facing class of a failed session.
type ErrorCode string

const (
	CodeNoFileSelected ErrorCode = "no_file_selected"
	CodeTransferFailed ErrorCode = "transfer_failed"
)

// Fixed user-facing messages. Pages localize by ErrorCode instead.
const (
	MessageNoFileSelected = "Please select a file."
	MessageTransferFailed = "Upload failed, please try again later."
)

// Code classifies err. Malformed responses surface as transfer failures.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFileSelected):
		return CodeNoFileSelected
	default:
		return CodeTransferFailed
	}
}

// Message returns the fixed user-facing message for code.
func (c ErrorCode) Message() string {
	switch c {
	case CodeNoFileSelected:
		return MessageNoFileSelected
	case CodeTransferFailed:
		return MessageTransferFailed
	default:
		return ""
	}
}
