// cmd/assistant/worker.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"estate-assistant/internal/common/camunda"
	assistantreply "estate-assistant/internal/workers/assistant-reply"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the assistant-reply job worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := buildDeps(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		client, err := camunda.Connect(ctx, camunda.DefaultClientConfig(cfg.Camunda.BrokerAddress), log)
		if err != nil {
			return err
		}
		defer client.Close()

		workerCfg := assistantreply.LoadConfig(cfg.Camunda)
		handler := assistantreply.NewHandler(workerCfg, d.engine, d.contextSource(), log)
		jobWorker := camunda.StartWorker(client.GetClient(), camunda.WorkerConfig{
			TaskType:      assistantreply.TaskType,
			MaxJobsActive: workerCfg.MaxJobsActive,
			Timeout:       workerCfg.Timeout,
		}, handler.Handle, log)
		defer jobWorker.Stop()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := client.HealthCheck(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
		probe := &http.Server{Addr: cfg.Server.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := probe.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("probe server failed", map[string]interface{}{"error": err.Error()})
			}
		}()

		<-ctx.Done()
		log.Info("shutting down worker", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return probe.Shutdown(shutdownCtx)
	},
}
