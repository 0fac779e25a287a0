package neopixel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/LandynMoreno/zolo/internal/surface"
)

var ErrInvalidColor = errors.New("invalid color")

// Named colors accepted by ParseColor.
var (
	Off     = surface.RGB{}
	Red     = surface.RGB{R: 255}
	Green   = surface.RGB{G: 255}
	Blue    = surface.RGB{B: 255}
	White   = surface.RGB{R: 255, G: 255, B: 255}
	Yellow  = surface.RGB{R: 255, G: 255}
	Cyan    = surface.RGB{G: 255, B: 255}
	Magenta = surface.RGB{R: 255, B: 255}
	Orange  = surface.RGB{R: 255, G: 165}
	Purple  = surface.RGB{R: 128, B: 128}
	Pink    = surface.RGB{R: 255, G: 192, B: 203}
)

var namedColors = map[string]surface.RGB{
	"off":     Off,
	"black":   Off,
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"white":   White,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"orange":  Orange,
	"purple":  Purple,
	"pink":    Pink,
}

// ColorNames returns the names ParseColor understands, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for n := range namedColors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseColor accepts a color name or a hex string (#rgb or #rrggbb, '#' optional).
func ParseColor(s string) (surface.RGB, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	return ParseHex(s)
}

func ParseHex(s string) (surface.RGB, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return surface.Black, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return surface.RGB{R: r, G: g, B: b}, nil
}

// Hex formats c as #rrggbb.
func Hex(c surface.RGB) string { return c.String() }
