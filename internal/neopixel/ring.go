// Package neopixel is the LED ring as the rest of the robot sees it: a
// pixel surface plus an animation engine behind one set of calls.
package neopixel

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LandynMoreno/zolo/internal/animation"
	"github.com/LandynMoreno/zolo/internal/led"
	"github.com/LandynMoreno/zolo/internal/surface"
)

type Options struct {
	Pin         int
	Count       int
	Brightness  float64
	Backends    []led.Backend
	JoinTimeout time.Duration
}

type Ring struct {
	log     zerolog.Logger
	surface *surface.Surface
	engine  *animation.Engine
}

func New(o Options, log zerolog.Logger) (*Ring, error) {
	s, err := surface.New(surface.Config{Pin: o.Pin, Count: o.Count, Brightness: o.Brightness}, o.Backends, log)
	if err != nil {
		return nil, err
	}
	var opts []animation.Option
	if o.JoinTimeout > 0 {
		opts = append(opts, animation.WithJoinTimeout(o.JoinTimeout))
	}
	return &Ring{
		log:     log.With().Str("component", "neopixel").Logger(),
		surface: s,
		engine:  animation.NewEngine(s, log, opts...),
	}, nil
}

// Initialize acquires the strip. It also re-arms the engine after Cleanup.
func (r *Ring) Initialize() (led.Mode, error) {
	mode, err := r.surface.Initialize()
	if err != nil {
		return "", err
	}
	r.engine.Reopen()
	return mode, nil
}

func (r *Ring) SetPixel(index int, c surface.RGB) error { return r.surface.SetPixel(index, c) }
func (r *Ring) SetAll(c surface.RGB) error              { return r.surface.SetAll(c) }
func (r *Ring) Clear() error                            { return r.surface.Clear() }
func (r *Ring) SetBrightness(level float64) error       { return r.surface.SetBrightness(level) }

// StartAnimation replaces any running animation with p.
func (r *Ring) StartAnimation(p animation.Pattern) (uint64, error) {
	if !r.surface.Initialized() {
		return 0, surface.ErrNotInitialized
	}
	return r.engine.Start(p)
}

// StopAnimation stops the running animation and clears the ring.
func (r *Ring) StopAnimation() error { return r.engine.Stop() }

// Fill stops any animation without the intermediate clear and paints every
// pixel c.
func (r *Ring) Fill(c surface.RGB) error {
	if !r.surface.Initialized() {
		return surface.ErrNotInitialized
	}
	r.engine.Interrupt()
	return r.surface.SetAll(c)
}

var statusColors = map[string]surface.RGB{
	"ready":      Green,
	"success":    Green,
	"listening":  Blue,
	"processing": Yellow,
	"speaking":   Yellow,
	"thinking":   Cyan,
	"error":      Red,
	"failed":     Red,
	"warning":    Orange,
	"sleep":      Purple,
	"off":        Off,
}

// StatusColor returns the color shown for a robot status; unknown statuses
// are white.
func StatusColor(status string) surface.RGB {
	if c, ok := statusColors[strings.ToLower(status)]; ok {
		return c
	}
	return White
}

// ShowStatus breathes the status color for the active states and fills it
// solid otherwise.
func (r *Ring) ShowStatus(status string) error {
	c := StatusColor(status)
	switch strings.ToLower(status) {
	case "listening", "processing":
		_, err := r.StartAnimation(animation.Pattern{Kind: animation.Breathing, Color: c})
		return err
	}
	return r.Fill(c)
}

// ApplyPreset stops any animation and paints a named palette, or colors
// when given, repeated around the ring.
func (r *Ring) ApplyPreset(name string, colors []string) error {
	if !r.surface.Initialized() {
		return surface.ErrNotInitialized
	}
	frame, err := PresetFrame(name, colors, r.surface.Count())
	if err != nil {
		return err
	}
	r.engine.Interrupt()
	_, err = r.surface.WriteFrame(frame, nil)
	return err
}

type Status struct {
	Initialized    bool            `json:"initialized"`
	Mode           led.Mode        `json:"mode"`
	CurrentPattern animation.Kind  `json:"current_pattern,omitempty"`
	State          animation.State `json:"state"`
	Generation     uint64          `json:"generation"`
	Brightness     float64         `json:"brightness"`
	PixelCount     int             `json:"pixel_count"`
	Speed          float64         `json:"speed,omitempty"`
}

func (r *Ring) Status() Status {
	st := Status{
		Initialized: r.surface.Initialized(),
		Mode:        r.surface.Mode(),
		State:       r.engine.State(),
		Generation:  r.engine.Generation(),
		Brightness:  r.surface.Brightness(),
		PixelCount:  r.surface.Count(),
	}
	if p, ok := r.engine.Current(); ok {
		st.CurrentPattern = p.Kind
		st.Speed = p.Speed.Seconds()
	}
	return st
}

// Cleanup stops the engine, turns the ring off and releases the hardware.
func (r *Ring) Cleanup() error {
	r.engine.Shutdown()
	return r.surface.Cleanup()
}

func (r *Ring) Count() int                             { return r.surface.Count() }
func (r *Ring) Frame() []surface.RGB                   { return r.surface.Frame() }
func (r *Ring) Initialized() bool                      { return r.surface.Initialized() }
func (r *Ring) Observe(f func(rgb []byte))             { r.surface.SetObserver(f) }
func (r *Ring) OnAnimationExit(f func(animation.Exit)) { r.engine.OnExit(f) }
