package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LandynMoreno/zolo/internal/animation"
	"github.com/LandynMoreno/zolo/internal/neopixel"
)

var (
	demoColor    string
	demoSpeed    time.Duration
	demoDuration time.Duration
	demoFor      time.Duration
)

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name := "rainbow"
	if len(args) == 1 {
		name = args[0]
	}
	kind, err := animation.ParseKind(name)
	if err != nil {
		return err
	}
	color, err := neopixel.ParseColor(demoColor)
	if err != nil {
		return err
	}
	speed := demoSpeed
	if speed == 0 {
		speed = cfg.Animation.Speed
	}

	ring, err := buildRing(cfg)
	if err != nil {
		return err
	}
	if _, err := ring.Initialize(); err != nil {
		return err
	}
	defer releaseRing(ring)

	ended := make(chan animation.Exit, 1)
	ring.OnAnimationExit(func(ex animation.Exit) {
		if ex.Reason != animation.Cancelled {
			ended <- ex
		}
	})

	if _, err := ring.StartAnimation(animation.Pattern{
		Kind:     kind,
		Color:    color,
		Speed:    speed,
		Duration: demoDuration,
	}); err != nil {
		return err
	}
	return hold(demoFor, ended)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ring, err := buildRing(cfg)
	if err != nil {
		return err
	}
	if _, err := ring.Initialize(); err != nil {
		return err
	}
	defer releaseRing(ring)

	if err := ring.ShowStatus(args[0]); err != nil {
		return err
	}
	log.Info().Str("status", args[0]).Str("color", neopixel.StatusColor(args[0]).String()).Msg("showing status")
	return hold(demoFor, nil)
}

func runOff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ring, err := buildRing(cfg)
	if err != nil {
		return err
	}
	if _, err := ring.Initialize(); err != nil {
		return err
	}
	return ring.Cleanup()
}

// releaseRing runs Cleanup for commands that exit right after; a failure is
// only worth a warning there.
func releaseRing(ring *neopixel.Ring) {
	if err := ring.Cleanup(); err != nil {
		log.Warn().Err(err).Msg("LED cleanup")
	}
}

// hold blocks until a signal, d elapses (when non-zero) or the animation
// ends on its own. A failed animation is returned as the error.
func hold(d time.Duration, ended <-chan animation.Exit) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	select {
	case <-ctx.Done():
		return nil
	case ex := <-ended:
		log.Info().Str("pattern", string(ex.Pattern.Kind)).Str("reason", string(ex.Reason)).Msg("animation ended")
		return ex.Err
	}
}
