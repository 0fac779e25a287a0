package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Mode names the kind of sink a Driver writes to.
type Mode string

const (
	ModeWS281x Mode = "ws281x"
	ModeSPI    Mode = "spi"
	ModeSim    Mode = "sim"
)

// Backend opens a Driver for a strip of count pixels whose data line is on pin.
type Backend interface {
	Mode() Mode
	Open(pin, count int) (Driver, error)
}
