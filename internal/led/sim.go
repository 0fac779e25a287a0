package led

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/extra/devices/screen"
)

// Sim accepts every frame and logs it instead of driving hardware.
// With Console set, frames are also drawn as ANSI blocks on stdout.
type Sim struct {
	Console bool
	Log     zerolog.Logger
}

func (s *Sim) Mode() Mode { return ModeSim }

func (s *Sim) Open(pin, count int) (Driver, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	d := &SimDriver{
		count: count,
		log:   s.Log.With().Str("driver", string(ModeSim)).Int("gpio", pin).Logger(),
		last:  make([]byte, count*3),
	}
	if s.Console {
		d.screen = screen.New(count)
	}
	d.log.Info().Int("count", count).Msg("running in simulation mode")
	return d, nil
}

// SimDriver is the Driver returned by Sim. It keeps the last frame so the
// simulated strip can be inspected.
type SimDriver struct {
	mu     sync.Mutex
	count  int
	log    zerolog.Logger
	screen *screen.Dev
	last   []byte
	frames uint64
	closed bool
}

func (d *SimDriver) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("sim driver closed")
	}
	if len(rgb) != d.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), d.count)
	}
	copy(d.last, rgb)
	d.frames++
	d.log.Trace().Uint64("frame", d.frames).Hex("rgb", rgb).Msg("frame")

	if d.screen != nil {
		im := image.NewNRGBA(image.Rect(0, 0, d.count, 1))
		for x := 0; x < d.count; x++ {
			im.SetNRGBA(x, 0, color.NRGBA{R: rgb[x*3], G: rgb[x*3+1], B: rgb[x*3+2], A: 255})
		}
		if err := d.screen.Draw(im.Bounds(), im, image.Point{}); err != nil {
			return err
		}
		fmt.Printf("\n")
	}
	return nil
}

// Last returns a copy of the most recent frame.
func (d *SimDriver) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.last...)
}

// Frames returns how many frames were written.
func (d *SimDriver) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *SimDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		d.log.Info().Uint64("frames", d.frames).Msg("simulated strip closed")
	}
	return nil
}
