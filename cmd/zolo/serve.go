package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LandynMoreno/zolo/internal/api"
	"github.com/LandynMoreno/zolo/internal/diagnostics"
)

var addr string

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ring, err := buildRing(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := api.NewHub(log.Logger)
	go hub.Run(ctx)
	server := api.NewServer(ring, hub, cfg.Driver, log.Logger)

	mode, err := ring.Initialize()
	if err != nil {
		return err
	}
	if d, ok := diagnostics.FromMode(cfg.Driver, mode); ok {
		log.Warn().Str("code", d.Code).Msg(d.Summary)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("mode", string(mode)).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("http shutdown")
	}
	if cerr := ring.Cleanup(); cerr != nil {
		log.Warn().Err(cerr).Msg("LED cleanup")
	}
	return err
}
