// Package ledtest provides an in-memory LED driver for headless tests.
package ledtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/LandynMoreno/zolo/internal/led"
)

// ErrInjected is returned by Write once a Recorder is told to fail.
var ErrInjected = errors.New("injected write failure")

// Recorder keeps every frame it is given.
type Recorder struct {
	mu       sync.Mutex
	count    int
	frames   [][]byte
	failNext int
	failAll  bool
	closed   bool
	onWrite  func([]byte)
}

func NewRecorder(count int) *Recorder {
	return &Recorder{count: count}
}

func (r *Recorder) Write(rgb []byte) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New("recorder closed")
	}
	if len(rgb) != r.count*3 {
		r.mu.Unlock()
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), r.count)
	}
	if r.failAll || r.failNext > 0 {
		if r.failNext > 0 {
			r.failNext--
		}
		r.mu.Unlock()
		return ErrInjected
	}
	f := append([]byte(nil), rgb...)
	r.frames = append(r.frames, f)
	hook := r.onWrite
	r.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// FailNext makes the next n writes return ErrInjected.
func (r *Recorder) FailNext(n int) {
	r.mu.Lock()
	r.failNext = n
	r.mu.Unlock()
}

// FailAlways toggles permanent write failure.
func (r *Recorder) FailAlways(on bool) {
	r.mu.Lock()
	r.failAll = on
	r.mu.Unlock()
}

// OnWrite installs a hook called after each successful write, outside the lock.
func (r *Recorder) OnWrite(f func([]byte)) {
	r.mu.Lock()
	r.onWrite = f
	r.mu.Unlock()
}

// Frames returns copies of all recorded frames.
func (r *Recorder) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	for i, f := range r.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame, or nil.
func (r *Recorder) Last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return append([]byte(nil), r.frames[len(r.frames)-1]...)
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Backend hands out a single Recorder, or fails with Err when set.
type Backend struct {
	Kind led.Mode
	Rec  *Recorder
	Err  error

	mu     sync.Mutex
	opened int
}

func (b *Backend) Mode() led.Mode {
	if b.Kind == "" {
		return led.ModeWS281x
	}
	return b.Kind
}

func (b *Backend) Open(pin, count int) (led.Driver, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened++
	if b.Err != nil {
		return nil, b.Err
	}
	if b.Rec == nil {
		b.Rec = NewRecorder(count)
	}
	return b.Rec, nil
}

// Opened reports how many times Open was called.
func (b *Backend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}
