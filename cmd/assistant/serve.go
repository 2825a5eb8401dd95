// cmd/assistant/serve.go
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/observability"
	"estate-assistant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		obs, err := observability.New(cfg.App.Name)
		if err != nil {
			log.Warn("observability disabled", map[string]interface{}{"error": err.Error()})
			obs = observability.Noop()
		}

		d, err := buildDeps(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		srv := server.New(server.Options{
			Config:        cfg.Server,
			Engine:        d.engine,
			Inventory:     d.contextSource(),
			Checks:        d.checks,
			Observability: obs,
			Logger:        log,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		log.Info("default provider", map[string]interface{}{"provider": d.engine.Selector().Current()})

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		obsCtx, obsCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer obsCancel()
		return obs.Shutdown(obsCtx)
	},
}
