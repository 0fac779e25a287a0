package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // spireg name, e.g. SPI0.0; empty picks the first port
	SpeedHz int    `yaml:"speed_hz"` // LED bit rate, 800000 for WS2812
}

type Animation struct {
	Speed       time.Duration `yaml:"speed"`        // demo frame period; 0 keeps each pattern's default
	JoinTimeout time.Duration `yaml:"join_timeout"` // wait for a replaced animation to exit
}

type Sim struct {
	Console bool `yaml:"console"` // draw frames on the terminal
}

type Config struct {
	Driver     string  `yaml:"driver"` // "auto" | "ws281x" | "spi" | "sim"
	GPIO       int     `yaml:"gpio"`
	LEDCount   int     `yaml:"led_count"`
	Brightness float64 `yaml:"brightness"`
	ColorOrder string  `yaml:"color_order"`
	FreqHz     int     `yaml:"freq_hz"`
	DMA        int     `yaml:"dma"`
	Invert     bool    `yaml:"invert"`
	Channel    int     `yaml:"channel"` // 1 for GPIO 13, 19, 41, 45 or 53

	SPI       SPI       `yaml:"spi,omitempty"`
	Animation Animation `yaml:"animation"`
	Sim       Sim       `yaml:"sim"`

	Addr string `yaml:"addr"`
}

// Default is a 12 pixel WS2812 ring on GPIO18.
func Default() *Config {
	return &Config{
		Driver:     "auto",
		GPIO:       18,
		LEDCount:   12,
		Brightness: 0.5,
		ColorOrder: "GRB",
		FreqHz:     800000,
		DMA:        10,
		SPI:        SPI{SpeedHz: 800000},
		Animation: Animation{
			JoinTimeout: time.Second,
		},
		Addr: ":8080",
	}
}

// Load overlays the YAML file at path on Default. On a read error the
// defaults are still returned alongside the error.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.LEDCount <= 0 {
		errs = append(errs, fmt.Errorf("led_count must be positive, got %d", c.LEDCount))
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		errs = append(errs, fmt.Errorf("brightness must be in [0,1], got %v", c.Brightness))
	}
	switch c.Driver {
	case "", "auto", "ws281x", "spi", "sim":
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if c.Channel != 0 && c.Channel != 1 {
		errs = append(errs, fmt.Errorf("channel must be 0 or 1, got %d", c.Channel))
	}
	if c.Animation.Speed < 0 || c.Animation.JoinTimeout < 0 {
		errs = append(errs, errors.New("animation durations must not be negative"))
	}
	return errors.Join(errs...)
}
