package diagnostics

import (
	"errors"

	"github.com/LandynMoreno/zolo/internal/animation"
	"github.com/LandynMoreno/zolo/internal/led"
	"github.com/LandynMoreno/zolo/internal/surface"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromExit reports animation sessions worth surfacing. Sessions that were
// cancelled produce nothing.
func FromExit(ex animation.Exit) (Diagnostic, bool) {
	ev := map[string]any{
		"pattern":    string(ex.Pattern.Kind),
		"generation": ex.Generation,
	}
	switch ex.Reason {
	case animation.Completed:
		return Diagnostic{
			Severity: Info,
			Code:     "ANIM.DONE",
			Summary:  "Animation complete",
			Evidence: ev,
		}, true
	case animation.Failed:
		d := Diagnostic{
			Severity: Err,
			Code:     "ANIM.FAILED",
			Summary:  "Animation stopped on a write error",
			Evidence: ev,
		}
		if ex.Err != nil {
			d.Detail = ex.Err.Error()
		}
		if errors.Is(ex.Err, surface.ErrHardwareIO) {
			d.Code = "LED.WRITE"
			d.LikelyCauses = []string{
				"LED driver lost access to the PWM/DMA or SPI device",
				"strip power or data line disconnected",
			}
			d.SuggestedFixes = []string{
				"check the 5V supply and the data wire on the configured GPIO",
				"restart with --driver sim to confirm the rest of the stack",
			}
		}
		return d, true
	}
	return Diagnostic{}, false
}

// FromMode warns when the strip came up in a mode other than the one asked
// for, which in practice means hardware init fell through to simulation.
func FromMode(requested string, got led.Mode) (Diagnostic, bool) {
	if got != led.ModeSim || requested == string(led.ModeSim) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity: Warn,
		Code:     "LED.SIMULATED",
		Summary:  "No LED hardware driver started; running in simulation",
		LikelyCauses: []string{
			"binary built without -tags pi",
			"not running as root (ws281x needs /dev/mem)",
			"SPI disabled in /boot/config.txt",
		},
		Evidence: map[string]any{"requested": requested, "mode": string(got)},
	}, true
}

// EstimateCurrent returns the approximate strip draw in amps for a flushed
// frame, at 20mA per channel at full scale.
func EstimateCurrent(rgb []byte) float64 {
	var sum float64
	for i := 0; i+2 < len(rgb); i += 3 {
		sum += float64(rgb[i]) + float64(rgb[i+1]) + float64(rgb[i+2])
	}
	return sum / 255.0 * 0.020
}
