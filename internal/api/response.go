package api

import (
	"errors"
	"net/http"

	"github.com/LandynMoreno/zolo/internal/animation"
	"github.com/LandynMoreno/zolo/internal/neopixel"
	"github.com/LandynMoreno/zolo/internal/surface"
)

// ApiResponse is the envelope every JSON endpoint answers with.
type ApiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

var errBadRequest = errors.New("bad request")

type ControlRequest struct {
	Action     string `json:"action" binding:"required,oneof=set_led set_all clear_all set_brightness"`
	LEDIndex   *int   `json:"led_index"`
	Color      string `json:"color"`
	Brightness *int   `json:"brightness"` // percent
}

type ControlResponse struct {
	LEDIndex   *int   `json:"led_index,omitempty"`
	Color      string `json:"color,omitempty"`
	Brightness *int   `json:"brightness,omitempty"`
}

type PatternRequest struct {
	Action      string   `json:"action" binding:"required,oneof=preset test stop start"`
	PatternName string   `json:"pattern_name"`
	Pattern     string   `json:"pattern"`
	Color       string   `json:"color"`
	Colors      []string `json:"colors"`
	Speed       *float64 `json:"speed"`    // seconds per frame
	Duration    *int     `json:"duration"` // milliseconds
	Brightness  *int     `json:"brightness"`
}

type PatternResponse struct {
	PatternName string `json:"pattern_name,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Generation  uint64 `json:"generation,omitempty"`
	Active      bool   `json:"active"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, surface.ErrOutOfRange),
		errors.Is(err, neopixel.ErrInvalidColor),
		errors.Is(err, animation.ErrUnknownPattern):
		return http.StatusBadRequest
	case errors.Is(err, surface.ErrNotInitialized):
		return http.StatusConflict
	case errors.Is(err, animation.ErrEngineShuttingDown):
		return http.StatusServiceUnavailable
	case errors.Is(err, surface.ErrHardwareIO):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
