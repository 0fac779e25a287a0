package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	driverName string
	gpio       int
	ledCount   int
	brightness float64
	simOnly    bool
	console    bool
	verbose    bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:   "zolo",
		Short: "NeoPixel ring service for the zolo robot",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: runServe,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "config.yaml", "path to config.yaml")
	pf.StringVar(&driverName, "driver", "auto", "driver: auto | ws281x | spi | sim")
	pf.IntVar(&gpio, "gpio", 18, "data pin (BCM number)")
	pf.IntVar(&ledCount, "count", 12, "number of LEDs on the ring")
	pf.Float64Var(&brightness, "brightness", 0.5, "global brightness 0..1")
	pf.BoolVar(&simOnly, "sim-only", false, "force simulation (no hardware output)")
	pf.BoolVar(&console, "console", false, "draw simulated frames on the terminal")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP/websocket LED API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	demoCmd := &cobra.Command{
		Use:       "demo [pattern]",
		Short:     "run one animation until interrupted",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"rainbow", "breathing", "spinning", "pulse"},
		RunE:      runDemo,
	}
	demoCmd.Flags().StringVar(&demoColor, "color", "blue", "pattern color (name or #rrggbb)")
	demoCmd.Flags().DurationVar(&demoSpeed, "speed", 0, "frame period (0 = pattern default)")
	demoCmd.Flags().DurationVar(&demoDuration, "duration", 0, "pulse length (0 = 1s)")
	demoCmd.Flags().DurationVar(&demoFor, "for", 0, "stop after this long (0 = until Ctrl-C)")

	statusCmd := &cobra.Command{
		Use:   "status [name]",
		Short: "show a robot status color (ready, listening, error, ...)",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
	statusCmd.Flags().DurationVar(&demoFor, "for", 3*time.Second, "how long to show it")

	offCmd := &cobra.Command{
		Use:   "off",
		Short: "turn every LED off",
		RunE:  runOff,
	}

	rootCmd.AddCommand(serveCmd, demoCmd, statusCmd, offCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
