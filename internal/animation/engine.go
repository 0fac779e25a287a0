// Package animation runs at most one cancellable LED pattern at a time
// against a shared canvas.
package animation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LandynMoreno/zolo/internal/surface"
)

var ErrEngineShuttingDown = errors.New("animation engine shutting down")

const DefaultJoinTimeout = time.Second

// Canvas is the part of a surface the engine draws on.
type Canvas interface {
	Count() int
	WriteFrame(frame []surface.RGB, live func() bool) (bool, error)
	Clear() error
}

type State string

const (
	Idle    State = "idle"
	Running State = "running"
)

// Reason says why a session's task returned.
type Reason string

const (
	Completed Reason = "completed"
	Cancelled Reason = "cancelled"
	Failed    Reason = "failed"
)

// Exit describes a finished session. Err is set only for Failed.
type Exit struct {
	Pattern    Pattern
	Generation uint64
	Reason     Reason
	Err        error
}

type session struct {
	pattern Pattern
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option func(*Engine)

// WithJoinTimeout bounds how long Start and Stop wait for the previous task.
func WithJoinTimeout(d time.Duration) Option {
	return func(e *Engine) { e.joinTimeout = d }
}

func WithExitHook(f func(Exit)) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, f) }
}

// Engine is safe for concurrent use.
//
// lifecycle serializes Start, Stop, Interrupt and Shutdown. mu guards the
// session fields and is the only lock a running task takes, so a task can
// always finish while a caller holding lifecycle waits for it.
type Engine struct {
	canvas      Canvas
	log         zerolog.Logger
	joinTimeout time.Duration

	lifecycle sync.Mutex

	mu      sync.Mutex
	current *session
	gen     uint64
	closing bool
	hooks   []func(Exit)
}

func NewEngine(c Canvas, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		canvas:      c,
		log:         log.With().Str("component", "animation").Logger(),
		joinTimeout: DefaultJoinTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// OnExit registers f to be called after every session ends. f runs on the
// session's goroutine once the engine state has settled.
func (e *Engine) OnExit(f func(Exit)) {
	e.mu.Lock()
	e.hooks = append(e.hooks, f)
	e.mu.Unlock()
}

// Start replaces any running session with p and returns the new generation.
// The previous task has exited, or its join timed out, before the new task
// writes its first frame.
func (e *Engine) Start(p Pattern) (uint64, error) {
	p, err := p.withDefaults()
	if err != nil {
		return 0, err
	}
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.mu.Lock()
	closing := e.closing
	e.mu.Unlock()
	if closing {
		return 0, ErrEngineShuttingDown
	}
	e.retire()

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.gen++
	s := &session{
		pattern: p,
		gen:     e.gen,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	e.current = s
	e.mu.Unlock()

	e.log.Info().
		Str("pattern", string(p.Kind)).
		Uint64("generation", s.gen).
		Dur("speed", p.Speed).
		Msg("animation started")
	go e.run(s)
	return s.gen, nil
}

// Stop cancels the running session, waits for it and clears the canvas.
// It is a no-op when idle.
func (e *Engine) Stop() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if !e.retire() {
		return nil
	}
	return e.canvas.Clear()
}

// Interrupt cancels and joins the running session but leaves the canvas as
// the last frame drew it. It reports whether a session was running.
func (e *Engine) Interrupt() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	return e.retire()
}

// Shutdown stops the running session and makes further Start calls fail
// with ErrEngineShuttingDown until Reopen.
func (e *Engine) Shutdown() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.mu.Lock()
	e.closing = true
	e.mu.Unlock()
	e.retire()
}

// Reopen accepts Start calls again after Shutdown.
func (e *Engine) Reopen() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.mu.Lock()
	e.closing = false
	e.mu.Unlock()
}

// retire detaches the current session, cancels it and waits for its task.
// Caller must hold lifecycle.
func (e *Engine) retire() bool {
	e.mu.Lock()
	s := e.current
	e.current = nil
	e.mu.Unlock()
	if s == nil {
		return false
	}
	s.cancel()

	t := time.NewTimer(e.joinTimeout)
	defer t.Stop()
	select {
	case <-s.done:
	case <-t.C:
		e.log.Warn().
			Str("pattern", string(s.pattern.Kind)).
			Uint64("generation", s.gen).
			Dur("timeout", e.joinTimeout).
			Msg("animation task did not exit in time; continuing")
	}
	return true
}

func (e *Engine) run(s *session) {
	n := e.canvas.Count()
	gen := newGenerator(s.pattern, n)
	frame := make([]surface.RGB, n)
	live := func() bool { return s.ctx.Err() == nil }

	tick := time.NewTimer(s.pattern.Speed)
	defer tick.Stop()

	ex := Exit{Pattern: s.pattern, Generation: s.gen, Reason: Cancelled}
	for s.ctx.Err() == nil {
		if gen.next(frame) {
			ex.Reason = Completed
			if _, err := e.canvas.WriteFrame(make([]surface.RGB, n), live); err != nil {
				ex.Reason, ex.Err = Failed, err
			}
			break
		}
		if _, err := e.canvas.WriteFrame(frame, live); err != nil {
			ex.Reason, ex.Err = Failed, err
			if _, cerr := e.canvas.WriteFrame(make([]surface.RGB, n), live); cerr != nil {
				e.log.Debug().Err(cerr).Msg("clear after failed frame")
			}
			break
		}
		select {
		case <-s.ctx.Done():
		case <-tick.C:
			tick.Reset(s.pattern.Speed)
		}
	}
	e.finish(s, ex)
}

// finish moves the engine to Idle when s is still current, then releases
// anyone joining s and runs the exit hooks.
func (e *Engine) finish(s *session, ex Exit) {
	e.mu.Lock()
	if e.current == s {
		e.current = nil
		s.cancel()
	}
	hooks := append([]func(Exit){}, e.hooks...)
	e.mu.Unlock()
	close(s.done)

	ev := e.log.Info()
	if ex.Err != nil {
		ev = e.log.Error().Err(ex.Err)
	}
	ev.Str("pattern", string(ex.Pattern.Kind)).
		Uint64("generation", ex.Generation).
		Str("reason", string(ex.Reason)).
		Msg("animation ended")

	for _, f := range hooks {
		f(ex)
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Idle
	}
	return Running
}

// Current returns the running pattern, if any.
func (e *Engine) Current() (Pattern, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Pattern{}, false
	}
	return e.current.pattern, true
}

// Generation returns the number of sessions started so far.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}
