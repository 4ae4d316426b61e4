package upload

import "math"

// Session holds the state of one upload. Its methods are pure transitions;
// Uploader serializes access.
type Session struct {
	file     *File
	status   Status
	progress int
	err      error
	result   *Result
}

// NewSession returns an idle session without a file.
func NewSession() *Session {
	return &Session{status: StatusIdle}
}

// SelectFile replaces the selected file and returns the one it superseded,
// if any, so the caller can release its local resource.
func (s *Session) SelectFile(f File) (*File, error) {
	if s.status == StatusUploading {
		return nil, ErrUploadInProgress
	}
	prev := s.file
	s.file = &f
	s.status = StatusIdle
	s.progress = 0
	s.err = nil
	s.result = nil
	return prev, nil
}

// Begin moves the session into Uploading and returns the payload to send.
// Without a file the session fails immediately with ErrNoFileSelected.
func (s *Session) Begin() (File, error) {
	if s.status == StatusUploading {
		return File{}, ErrUploadInProgress
	}
	if s.file == nil {
		s.status = StatusFailed
		s.progress = 0
		s.err = ErrNoFileSelected
		return File{}, ErrNoFileSelected
	}
	s.status = StatusUploading
	s.progress = 0
	s.err = nil
	return *s.file, nil
}

// Progress applies a transport tick and reports whether the visible
// percentage changed. Ticks that would move progress backwards, arrive
// outside an upload, or carry an unknown total are dropped.
func (s *Session) Progress(sent, total int64) bool {
	if s.status != StatusUploading || total <= 0 {
		return false
	}
	if sent < 0 {
		sent = 0
	}
	pct := int(math.Floor(float64(sent) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct <= s.progress {
		return false
	}
	s.progress = pct
	return true
}

// Succeed completes the upload with r.
func (s *Session) Succeed(r Result) bool {
	if s.status != StatusUploading {
		return false
	}
	s.status = StatusSucceeded
	s.progress = 100
	s.err = nil
	s.result = &r
	return true
}

// Fail marks the current attempt failed. A result from an earlier attempt
// on the same file is kept.
func (s *Session) Fail(err error) bool {
	if s.status != StatusUploading {
		return false
	}
	if err == nil {
		err = ErrTransferFailed
	}
	s.status = StatusFailed
	s.err = err
	return true
}

// Reset clears the session and returns the file it held.
func (s *Session) Reset() (*File, error) {
	if s.status == StatusUploading {
		return nil, ErrUploadInProgress
	}
	prev := s.file
	*s = Session{status: StatusIdle}
	return prev, nil
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// Err returns the cause of the last failure.
func (s *Session) Err() error {
	return s.err
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Status:   s.status,
		Progress: s.progress,
	}
	if s.file != nil {
		snap.File = &FileInfo{Name: s.file.Name, Size: s.file.Size, Preview: s.file.Local}
	}
	if s.status == StatusFailed {
		snap.ErrorCode = Code(s.err)
		snap.Error = snap.ErrorCode.Message()
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
