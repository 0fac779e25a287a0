package neopixel

import (
	"fmt"
	"sort"

	"github.com/LandynMoreno/zolo/internal/surface"
)

var presets = map[string][]string{
	"warm_white":    {"#FFF8DC", "#F5DEB3", "#DDD"},
	"ocean_waves":   {"#0077BE", "#00A8CC", "#40E0D0"},
	"sunset_fade":   {"#FF6B35", "#F7931E", "#FFD23F"},
	"rainbow_cycle": {"#FF0000", "#00FF00", "#0000FF"},
	"breathing":     {"#E8A87C", "#D2691E", "#8B4513"},
	"sparkle":       {"#FFFFFF", "#FFD700", "#C0C0C0"},
}

var presetFallback = []string{"#FFFFFF"}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PresetFrame repeats a palette across count pixels. colors overrides the
// named palette; an unknown name with no colors yields white.
func PresetFrame(name string, colors []string, count int) ([]surface.RGB, error) {
	if len(colors) == 0 {
		colors = presets[name]
	}
	if len(colors) == 0 {
		colors = presetFallback
	}
	palette := make([]surface.RGB, len(colors))
	for i, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		palette[i] = c
	}
	frame := make([]surface.RGB, count)
	for i := range frame {
		frame[i] = palette[i%len(palette)]
	}
	return frame, nil
}
