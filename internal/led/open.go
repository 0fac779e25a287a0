package led

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Open walks backends in order and returns the first Driver that opens.
// A simulation backend is appended when the chain does not already end in one,
// so Open only fails for an invalid count.
func Open(backends []Backend, pin, count int, log zerolog.Logger) (Driver, Mode, error) {
	if count <= 0 {
		return nil, "", fmt.Errorf("invalid LED count: %d", count)
	}
	if n := len(backends); n == 0 || backends[n-1].Mode() != ModeSim {
		backends = append(backends[:n:n], &Sim{Log: log})
	}

	for _, b := range backends {
		drv, err := b.Open(pin, count)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", string(b.Mode())).
				Int("gpio", pin).
				Msg("LED driver init failed; trying next")
			continue
		}
		log.Info().
			Str("driver", string(b.Mode())).
			Int("gpio", pin).
			Int("count", count).
			Msg("LED driver ready")
		return drv, b.Mode(), nil
	}
	return nil, "", errors.New("no LED driver could be opened")
}

// Chain returns the backends to try for a configured driver name.
// "auto" (or "") prefers the PWM/DMA driver, then SPI, then simulation.
func Chain(name string, ws *WS281x, spi *SPI, sim *Sim) ([]Backend, error) {
	switch Mode(name) {
	case "", "auto":
		return []Backend{ws, spi, sim}, nil
	case ModeWS281x:
		return []Backend{ws, sim}, nil
	case ModeSPI:
		return []Backend{spi, sim}, nil
	case ModeSim:
		return []Backend{sim}, nil
	default:
		return []Backend{sim}, fmt.Errorf("unknown driver %q", name)
	}
}
