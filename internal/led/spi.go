package led

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// SPI drives the strip as an NRZ bit stream on a SPI MOSI line. It is the
// fallback when the PWM/DMA driver cannot start (no root, audio in use, ...).
// The data pin is fixed by the SPI port, so Open ignores pin.
type SPI struct {
	Dev  string           // spireg port name, "" opens the first port
	Freq physic.Frequency // LED signal frequency, 800kHz when zero
}

func (s *SPI) Mode() Mode { return ModeSPI }

func (s *SPI) Open(pin, count int) (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(s.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", s.Dev, err)
	}
	d, err := NewSPIPort(p, count, s.Freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return d, nil
}

// SPIDriver writes frames through an nrzled device bound to an open port.
type SPIDriver struct {
	mu    sync.Mutex
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
}

// NewSPIPort binds an nrzled encoder to an already opened port.
func NewSPIPort(p spi.PortCloser, count int, freq physic.Frequency) (*SPIDriver, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq == 0 {
		freq = 800 * physic.KiloHertz
	}
	o := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(p, &o)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &SPIDriver{port: p, dev: d, count: count}, nil
}

func (s *SPIDriver) String() string { return s.dev.String() }

func (s *SPIDriver) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return errors.New("spi closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	if _, err := s.dev.Write(rgb); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close turns the strip off and releases the port.
func (s *SPIDriver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	herr := s.dev.Halt()
	cerr := s.port.Close()
	s.dev = nil
	return errors.Join(herr, cerr)
}
