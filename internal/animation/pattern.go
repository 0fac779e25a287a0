package animation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/LandynMoreno/zolo/internal/surface"
)

var ErrUnknownPattern = errors.New("unknown animation pattern")

type Kind string

const (
	Rainbow     Kind = "rainbow"
	Breathing   Kind = "breathing"
	SpinningDot Kind = "spinning"
	Pulse       Kind = "pulse"
)

// Frame periods used when a Pattern leaves Speed unset.
const (
	SpeedSlow   = 200 * time.Millisecond
	SpeedMedium = 100 * time.Millisecond
	SpeedFast   = 50 * time.Millisecond

	DefaultPulseDuration = time.Second
)

// Kinds lists every pattern the engine can run.
func Kinds() []Kind { return []Kind{Rainbow, Breathing, SpinningDot, Pulse} }

// ParseKind accepts the names in Kinds plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "rainbow", "rainbow_cycle":
		return Rainbow, nil
	case "breathing", "breathe":
		return Breathing, nil
	case "spinning", "spinning_dot", "spin":
		return SpinningDot, nil
	case "pulse":
		return Pulse, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}

// Pattern describes one animation run. Color is ignored by Rainbow and
// Duration is only used by Pulse.
type Pattern struct {
	Kind     Kind          `json:"kind"`
	Color    surface.RGB   `json:"color"`
	Speed    time.Duration `json:"speed"`
	Duration time.Duration `json:"duration,omitempty"`
}

// withDefaults fills zero Speed and Duration and validates the rest.
func (p Pattern) withDefaults() (Pattern, error) {
	if p.Speed < 0 {
		return p, fmt.Errorf("%w: negative speed %v", surface.ErrOutOfRange, p.Speed)
	}
	if p.Duration < 0 {
		return p, fmt.Errorf("%w: negative duration %v", surface.ErrOutOfRange, p.Duration)
	}
	switch p.Kind {
	case Rainbow, SpinningDot:
		if p.Speed == 0 {
			p.Speed = SpeedMedium
		}
	case Breathing:
		if p.Speed == 0 {
			p.Speed = SpeedFast
		}
	case Pulse:
		if p.Speed == 0 {
			p.Speed = SpeedFast
		}
		if p.Duration == 0 {
			p.Duration = DefaultPulseDuration
		}
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownPattern, p.Kind)
	}
	return p, nil
}

// generator fills frame with the next image and reports whether the
// pattern has finished. A finished generator leaves frame untouched.
type generator interface {
	next(frame []surface.RGB) (done bool)
}

func newGenerator(p Pattern, count int) generator {
	switch p.Kind {
	case Rainbow:
		return &rainbow{}
	case Breathing:
		return &breathing{color: p.Color, step: 5}
	case SpinningDot:
		return &spinner{color: p.Color}
	case Pulse:
		return &pulse{color: p.Color, total: int(p.Duration / p.Speed)}
	}
	return nil
}

type rainbow struct {
	counter int
}

func (r *rainbow) next(frame []surface.RGB) bool {
	n := len(frame)
	for i := range frame {
		frame[i] = Wheel(uint8((i*256/n + r.counter) & 255))
	}
	r.counter = (r.counter + 1) & 255
	return false
}

// Wheel maps a position on a 256-step color wheel to red, green, blue and
// back to red.
func Wheel(pos uint8) surface.RGB {
	p := int(pos)
	switch {
	case p < 85:
		return surface.RGB{R: uint8(255 - p*3), G: uint8(p * 3)}
	case p < 170:
		p -= 85
		return surface.RGB{G: uint8(255 - p*3), B: uint8(p * 3)}
	default:
		p -= 170
		return surface.RGB{R: uint8(p * 3), B: uint8(255 - p*3)}
	}
}

// breathing ramps 0,5,...,255,250,...,0,5,... without repeating the turns.
type breathing struct {
	color surface.RGB
	level int
	step  int
}

func (b *breathing) next(frame []surface.RGB) bool {
	c := dim(b.color, b.level)
	for i := range frame {
		frame[i] = c
	}
	if b.level+b.step > 255 || b.level+b.step < 0 {
		b.step = -b.step
	}
	b.level += b.step
	return false
}

type spinner struct {
	color surface.RGB
	pos   int
}

func (s *spinner) next(frame []surface.RGB) bool {
	for i := range frame {
		frame[i] = surface.Black
	}
	frame[s.pos] = s.color
	s.pos = (s.pos + 1) % len(frame)
	return false
}

type pulse struct {
	color surface.RGB
	step  int
	total int
}

func (p *pulse) next(frame []surface.RGB) bool {
	if p.step >= p.total {
		return true
	}
	level := PulseLevel(p.step, p.total)
	c := surface.RGB{
		R: uint8(float64(p.color.R) * level),
		G: uint8(float64(p.color.G) * level),
		B: uint8(float64(p.color.B) * level),
	}
	for i := range frame {
		frame[i] = c
	}
	p.step++
	return false
}

// PulseLevel is the sine envelope (sin(2π·step/total)+1)/2.
func PulseLevel(step, total int) float64 {
	return (math.Sin(2*math.Pi*float64(step)/float64(total)) + 1) / 2
}

func dim(c surface.RGB, level int) surface.RGB {
	return surface.RGB{
		R: uint8(int(c.R) * level / 255),
		G: uint8(int(c.G) * level / 255),
		B: uint8(int(c.B) * level / 255),
	}
}
