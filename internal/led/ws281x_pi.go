//go:build pi

package led

import (
	"errors"
	"fmt"
	"sync"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

func (w *WS281x) Open(pin, count int) (Driver, error) {
	if w.Channel < 0 || w.Channel > 1 {
		return nil, fmt.Errorf("invalid PWM channel %d", w.Channel)
	}

	ch := ws2811.DefaultOptions.Channels[0]
	ch.GpioPin = pin
	ch.LedCount = count
	ch.Brightness = 255 // brightness is applied to the frame before Write
	ch.Invert = w.Invert
	ch.StripeType = stripType(w.ColorOrder)

	opt := ws2811.DefaultOptions
	if w.Freq > 0 {
		opt.Frequency = w.Freq
	}
	if w.DMA > 0 {
		opt.DmaNum = w.DMA
	}
	if w.Channel == 1 {
		opt.Channels = []ws2811.ChannelOption{{}, ch}
	} else {
		opt.Channels = []ws2811.ChannelOption{ch}
	}

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("ws2811 make: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("ws2811 init: %w", err)
	}
	return &ws281xDriver{dev: dev, channel: w.Channel, count: count}, nil
}

func stripType(order string) int {
	switch order {
	case "RGB":
		return ws2811.WS2811StripRGB
	case "RBG":
		return ws2811.WS2811StripRBG
	case "GBR":
		return ws2811.WS2811StripGBR
	case "BRG":
		return ws2811.WS2811StripBRG
	case "BGR":
		return ws2811.WS2811StripBGR
	default:
		return ws2811.WS2811StripGRB
	}
}

type ws281xDriver struct {
	mu      sync.Mutex
	dev     *ws2811.WS2811
	channel int
	count   int
}

func (d *ws281xDriver) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return errors.New("ws2811 closed")
	}
	if len(rgb) != d.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), d.count)
	}

	// Packed as 0x00RRGGBB; the library reorders per strip type.
	leds := d.dev.Leds(d.channel)
	for i := 0; i < d.count && i < len(leds); i++ {
		leds[i] = uint32(rgb[i*3])<<16 | uint32(rgb[i*3+1])<<8 | uint32(rgb[i*3+2])
	}
	if err := d.dev.Render(); err != nil {
		return fmt.Errorf("ws2811 render: %w", err)
	}
	if err := d.dev.Wait(); err != nil {
		return fmt.Errorf("ws2811 wait: %w", err)
	}
	return nil
}

func (d *ws281xDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		d.dev.Fini()
		d.dev = nil
	}
	return nil
}
