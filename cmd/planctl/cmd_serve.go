package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"teamplanner/internal/api"
	"teamplanner/internal/permissions"
	"teamplanner/internal/poller"
)

var serveNoGate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operator API and poll engine health",
	Long:  "Start the operator HTTP API, the websocket change stream and background health/metrics polling.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoGate, "no-permissions", false, "Do not gate admin operations on the user's permissions")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var perms *permissions.Cache
	if !serveNoGate {
		perms = permissions.NewCache(a.client, cfg.PermissionsTTL, nil, logger)
	}
	srv := api.NewServer(a.dispatcher, a.broker, perms, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	p := poller.New(a.dispatcher, cfg.PollInterval, logger)
	h := p.Start(ctx)
	defer p.Stop(h)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendURL).Msg("operator API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info().Msg("shutting down gracefully...")
	timeoutCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
