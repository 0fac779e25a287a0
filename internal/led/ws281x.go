package led

// WS281x drives the strip through the rpi_ws281x PWM/DMA library. It is the
// preferred backend on a Raspberry Pi and is only compiled in with -tags pi.
type WS281x struct {
	Freq       int    // LED signal frequency in Hz, 800kHz when zero
	DMA        int    // DMA channel, 10 when zero
	Channel    int    // PWM channel; 1 for GPIOs 13, 19, 41, 45 or 53
	Invert     bool   // invert the data signal (level shifter with inverter)
	ColorOrder string // "GRB" (default), "RGB", "BRG", ...
}

func (w *WS281x) Mode() Mode { return ModeWS281x }
