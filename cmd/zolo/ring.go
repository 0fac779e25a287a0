package main

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/LandynMoreno/zolo/internal/config"
	"github.com/LandynMoreno/zolo/internal/led"
	"github.com/LandynMoreno/zolo/internal/neopixel"
)

// loadConfig layers defaults, config.yaml and explicitly set flags, in that
// order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", configPath).Msg("config not found; using defaults and flags")
	case err != nil:
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = driverName
	}
	if flags.Changed("gpio") {
		cfg.GPIO = gpio
	}
	if flags.Changed("count") {
		cfg.LEDCount = ledCount
	}
	if flags.Changed("brightness") {
		cfg.Brightness = brightness
	}
	if flags.Changed("console") {
		cfg.Sim.Console = console
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}
	if simOnly {
		cfg.Driver = string(led.ModeSim)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildRing(cfg *config.Config) (*neopixel.Ring, error) {
	ws := &led.WS281x{
		Freq:       cfg.FreqHz,
		DMA:        cfg.DMA,
		Channel:    cfg.Channel,
		Invert:     cfg.Invert,
		ColorOrder: cfg.ColorOrder,
	}
	spi := &led.SPI{
		Dev:  cfg.SPI.Dev,
		Freq: physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz,
	}
	sim := &led.Sim{Console: cfg.Sim.Console, Log: log.Logger}

	chain, err := led.Chain(cfg.Driver, ws, spi, sim)
	if err != nil {
		log.Warn().Err(err).Msg("using simulation")
	}
	return neopixel.New(neopixel.Options{
		Pin:         cfg.GPIO,
		Count:       cfg.LEDCount,
		Brightness:  cfg.Brightness,
		Backends:    chain,
		JoinTimeout: cfg.Animation.JoinTimeout,
	}, log.Logger)
}
