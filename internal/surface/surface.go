// Package surface owns the LED frame and brightness of a single strip and
// is the only path by which pixels reach the hardware.
//
// Every mutation runs read-modify-flush under one mutex, so an animation
// frame and a direct pixel write are never interleaved on the wire.
// Brightness is applied when a frame is flushed and is never stored in the
// frame itself.
package surface

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/LandynMoreno/zolo/internal/led"
)

var (
	ErrNotInitialized = errors.New("LED surface not initialized")
	ErrOutOfRange     = errors.New("value out of range")
	ErrHardwareIO     = errors.New("LED hardware write failed")
)

// RGB is one pixel, 0-255 per channel.
type RGB struct {
	R, G, B uint8
}

var Black = RGB{}

// Scale returns c with every channel multiplied by f in [0,1].
func (c RGB) Scale(f float64) RGB {
	return RGB{R: scale8(c.R, f), G: scale8(c.G, f), B: scale8(c.B, f)}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func scale8(v uint8, f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return v
	}
	return uint8(math.Round(float64(v) * f))
}

type Config struct {
	Pin        int
	Count      int
	Brightness float64
}

// Surface is safe for concurrent use.
type Surface struct {
	log      zerolog.Logger
	pin      int
	backends []led.Backend

	mu          sync.Mutex
	frame       []RGB
	brightness  float64
	drv         led.Driver
	mode        led.Mode
	initialized bool
	wire        []byte
	observer    func([]byte)
}

// New validates cfg. No hardware is touched until Initialize.
func New(cfg Config, backends []led.Backend, log zerolog.Logger) (*Surface, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("%w: pixel count %d", ErrOutOfRange, cfg.Count)
	}
	if !validLevel(cfg.Brightness) {
		return nil, fmt.Errorf("%w: brightness %v", ErrOutOfRange, cfg.Brightness)
	}
	return &Surface{
		log:        log.With().Str("component", "surface").Logger(),
		pin:        cfg.Pin,
		backends:   backends,
		frame:      make([]RGB, cfg.Count),
		brightness: cfg.Brightness,
		wire:       make([]byte, cfg.Count*3),
	}, nil
}

// Initialize opens the first backend that works, falling back to simulation.
// Calling it on an initialized surface returns the current mode.
func (s *Surface) Initialize() (led.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return s.mode, nil
	}
	drv, mode, err := led.Open(s.backends, s.pin, len(s.frame), s.log)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHardwareIO, err)
	}
	s.drv, s.mode, s.initialized = drv, mode, true
	s.log.Info().
		Str("mode", string(mode)).
		Int("count", len(s.frame)).
		Float64("brightness", s.brightness).
		Msg("LED surface ready")
	return mode, nil
}

func (s *Surface) SetPixel(index int, c RGB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if index < 0 || index >= len(s.frame) {
		return fmt.Errorf("%w: pixel %d not in [0,%d)", ErrOutOfRange, index, len(s.frame))
	}
	s.frame[index] = c
	return s.flush()
}

func (s *Surface) SetAll(c RGB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	for i := range s.frame {
		s.frame[i] = c
	}
	return s.flush()
}

func (s *Surface) Clear() error { return s.SetAll(Black) }

// SetBrightness re-flushes the current frame at the new level.
func (s *Surface) SetBrightness(level float64) error {
	if !validLevel(level) {
		return fmt.Errorf("%w: brightness %v not in [0,1]", ErrOutOfRange, level)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	s.brightness = level
	return s.flush()
}

// WriteFrame replaces the whole frame and flushes it. live is evaluated
// inside the write lock; when it reports false nothing is written and
// WriteFrame returns false. A nil live always writes.
func (s *Surface) WriteFrame(frame []RGB, live func() bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return false, ErrNotInitialized
	}
	if len(frame) != len(s.frame) {
		return false, fmt.Errorf("%w: frame has %d pixels, want %d", ErrOutOfRange, len(frame), len(s.frame))
	}
	if live != nil && !live() {
		return false, nil
	}
	copy(s.frame, frame)
	return true, s.flush()
}

// flush must be called with s.mu held.
func (s *Surface) flush() error {
	for i, c := range s.frame {
		c = c.Scale(s.brightness)
		s.wire[i*3], s.wire[i*3+1], s.wire[i*3+2] = c.R, c.G, c.B
	}
	if err := s.drv.Write(s.wire); err != nil {
		return fmt.Errorf("%w: %w", ErrHardwareIO, err)
	}
	if s.observer != nil {
		s.observer(append([]byte(nil), s.wire...))
	}
	return nil
}

// SetObserver registers f to receive a copy of every flushed, brightness
// scaled frame. f runs under the write lock and must not call back into s.
func (s *Surface) SetObserver(f func(rgb []byte)) {
	s.mu.Lock()
	s.observer = f
	s.mu.Unlock()
}

// Frame returns a copy of the stored (unscaled) frame.
func (s *Surface) Frame() []RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RGB(nil), s.frame...)
}

func (s *Surface) Pixel(index int) (RGB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.frame) {
		return Black, fmt.Errorf("%w: pixel %d not in [0,%d)", ErrOutOfRange, index, len(s.frame))
	}
	return s.frame[index], nil
}

func (s *Surface) Brightness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brightness
}

func (s *Surface) Count() int { return len(s.frame) }

// Mode is empty until Initialize succeeds.
func (s *Surface) Mode() led.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Surface) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Cleanup turns every LED off, releases the driver and marks the surface
// uninitialized. A second call does nothing.
func (s *Surface) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	for i := range s.frame {
		s.frame[i] = Black
	}
	ferr := s.flush()
	cerr := s.drv.Close()
	s.drv, s.mode, s.initialized = nil, "", false
	if err := errors.Join(ferr, cerr); err != nil {
		s.log.Warn().Err(err).Msg("LED cleanup incomplete")
		return err
	}
	s.log.Info().Msg("LED surface released")
	return nil
}

func validLevel(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
