// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"estate-assistant/internal/common/logger"
)

type WorkerConfig struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is an open job subscription for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func StartWorker(client zbc.Client, cfg WorkerConfig, handler worker.JobHandler, log logger.Logger) *Worker {
	maxJobs := cfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 8
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	jobWorker := client.NewJobWorker().
		JobType(cfg.TaskType).
		Handler(handler).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      cfg.TaskType,
		"maxJobsActive": maxJobs,
		"timeoutMs":     timeout.Milliseconds(),
	})
	return &Worker{worker: jobWorker, logger: log, taskType: cfg.TaskType}
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
