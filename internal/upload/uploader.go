package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Releaser frees the local copy behind a selected file.
type Releaser interface {
	Release(handle string) error
}

// Observer receives a snapshot after every visible state change, in order.
type Observer func(Snapshot)

// Uploader owns a Session. Commands and transport events are applied one
// at a time; progress events of an upload are consumed by a single
// goroutine in the order the transport emitted them.
type Uploader struct {
	transport Transport
	releaser  Releaser
	ctx       context.Context
	observers []Observer

	mu      sync.Mutex
	session *Session
	done    chan struct{}
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithReleaser releases superseded local files through r.
func WithReleaser(r Releaser) Option {
	return func(u *Uploader) { u.releaser = r }
}

// WithObserver subscribes fn to state changes.
func WithObserver(fn Observer) Option {
	return func(u *Uploader) { u.observers = append(u.observers, fn) }
}

// WithContext sets the context transfers run under. Uploads cannot be
// cancelled by users; this only ties them to the process lifetime.
func WithContext(ctx context.Context) Option {
	return func(u *Uploader) { u.ctx = ctx }
}

// NewUploader returns an idle uploader sending through t.
func NewUploader(t Transport, opts ...Option) *Uploader {
	u := &Uploader{
		transport: t,
		ctx:       context.Background(),
		session:   NewSession(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Snapshot returns the current session state.
func (u *Uploader) Snapshot() Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.session.Snapshot()
}

// SelectFile selects f, releasing the previously selected file.
func (u *Uploader) SelectFile(f File) error {
	u.mu.Lock()
	prev, err := u.session.SelectFile(f)
	snap := u.session.Snapshot()
	u.mu.Unlock()
	if err != nil {
		return err
	}
	u.release(prev)
	slog.Info("File selected", "name", f.Name, "size", f.Size)
	u.notify(snap)
	return nil
}

// BeginUpload starts sending the selected file. It returns once the
// transfer is running; use Wait to block until it settles.
// ErrNoFileSelected is returned after the session moved to Failed;
// ErrUploadInProgress leaves the session untouched.
func (u *Uploader) BeginUpload() error {
	u.mu.Lock()
	file, err := u.session.Begin()
	snap := u.session.Snapshot()
	if err != nil {
		u.mu.Unlock()
		if errors.Is(err, ErrNoFileSelected) {
			slog.Warn("Upload requested without a file")
			u.notify(snap)
		}
		return err
	}
	done := make(chan struct{})
	u.done = done
	u.mu.Unlock()

	slog.Info("Upload started", "name", file.Name, "size", file.Size)
	u.notify(snap)
	go u.run(file, done)
	return nil
}

// Wait blocks until the outstanding upload, if any, settles or ctx ends.
func (u *Uploader) Wait(ctx context.Context) error {
	u.mu.Lock()
	done := u.done
	u.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset discards the session and releases the selected file.
func (u *Uploader) Reset() error {
	u.mu.Lock()
	prev, err := u.session.Reset()
	snap := u.session.Snapshot()
	u.mu.Unlock()
	if err != nil {
		return err
	}
	u.release(prev)
	u.notify(snap)
	return nil
}

type event interface{ apply(*Session) bool }

type progressEvent struct{ sent, total int64 }

func (e progressEvent) apply(s *Session) bool { return s.Progress(e.sent, e.total) }

type successEvent struct{ result Result }

func (e successEvent) apply(s *Session) bool { return s.Succeed(e.result) }

type failureEvent struct{ err error }

func (e failureEvent) apply(s *Session) bool { return s.Fail(e.err) }

func (u *Uploader) run(file File, done chan struct{}) {
	defer close(done)

	events := make(chan event, 64)
	go func() {
		defer close(events)
		result, err := u.transport.Upload(u.ctx, file, func(sent, total int64) {
			events <- progressEvent{sent: sent, total: total}
		})
		if err != nil {
			events <- failureEvent{err: err}
			return
		}
		events <- successEvent{result: result}
	}()

	for ev := range events {
		u.mu.Lock()
		changed := ev.apply(u.session)
		snap := u.session.Snapshot()
		u.mu.Unlock()

		switch e := ev.(type) {
		case failureEvent:
			slog.Error("Upload failed", "name", file.Name, "error", e.err)
		case successEvent:
			slog.Info("Upload succeeded", "name", file.Name, "locator", e.result.Resource.Locator)
		}
		if changed {
			u.notify(snap)
		}
	}
}

func (u *Uploader) release(f *File) {
	if f == nil || u.releaser == nil {
		return
	}
	handle, ok := f.Local.Handle()
	if !ok {
		return
	}
	if err := u.releaser.Release(handle); err != nil {
		slog.Warn("Unable to release local file", "handle", handle, "err", err)
	}
}

func (u *Uploader) notify(snap Snapshot) {
	for _, fn := range u.observers {
		fn(snap)
	}
}
