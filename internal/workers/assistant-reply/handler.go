// internal/workers/assistant-reply/handler.go
package assistantreply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"estate-assistant/internal/assistant"
	apperrors "estate-assistant/internal/common/errors"
	"estate-assistant/internal/common/logger"
	"estate-assistant/internal/common/metrics"
	"estate-assistant/internal/inventory"
)

const (
	TaskType = "assistant-reply"
)

// ContextSource loads the asset context string for a stored inventory.
type ContextSource interface {
	ContextFor(ctx context.Context, inventoryID string) (string, error)
}

type Handler struct {
	config       *Config
	engine       *assistant.Engine
	inventory    ContextSource
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the job handler. inventory may be nil.
func NewHandler(config *Config, engine *assistant.Engine, inventory ContextSource, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		engine:       engine,
		inventory:    inventory,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.NewInvalidRequestError("Invalid job variables", err.Error()))
		return
	}

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	output, err := h.Execute(execCtx, &input)
	cancel()
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute answers one prompt. Provider failures fall back to a rule reply
// unless the input requires a provider answer.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, apperrors.NewInvalidRequestError("Prompt is required", "")
	}
	if input.Provider != "" && !h.engine.Selector().Registry().Has(input.Provider) {
		return nil, apperrors.NewUnknownProviderError(input.Provider)
	}

	assetContext := input.Context
	if strings.TrimSpace(assetContext) == "" && input.InventoryID != "" && h.inventory != nil {
		loaded, err := h.inventory.ContextFor(ctx, input.InventoryID)
		if errors.Is(err, inventory.ErrInventoryNotFound) {
			return nil, apperrors.NewInvalidRequestError("Inventory not found", input.InventoryID)
		}
		if err != nil {
			return nil, apperrors.NewInventoryLookupFailedError(input.InventoryID, err)
		}
		assetContext = loaded
	}

	out := h.engine.Attempt(ctx, assistant.Request{
		Prompt:   input.Prompt,
		Context:  assetContext,
		Provider: input.Provider,
	})

	if input.RequireProvider && out.Source == assistant.SourceRules {
		return nil, providerError(out)
	}

	return &Output{
		Response:       out.Reply,
		Category:       string(out.Category),
		Source:         string(out.Source),
		Provider:       out.Provider,
		FallbackReason: string(out.Fallback),
	}, nil
}

func providerError(out assistant.Outcome) *apperrors.StandardError {
	cause := out.Err
	if cause == nil {
		cause = fmt.Errorf("provider %s did not answer", out.Provider)
	}
	switch out.Fallback {
	case assistant.FallbackUnknownProvider:
		return apperrors.NewUnknownProviderError(out.Provider)
	case assistant.FallbackNotConfigured:
		return apperrors.NewProviderNotConfiguredError(out.Provider)
	case assistant.FallbackTimeout:
		return apperrors.NewUpstreamTimeoutError(out.Provider)
	case assistant.FallbackBadStatus:
		return apperrors.NewUpstreamBadStatusError(out.Provider, cause)
	case assistant.FallbackMalformedResponse:
		return apperrors.NewUpstreamMalformedResponseError(out.Provider, cause)
	default:
		return apperrors.NewUpstreamUnavailableError(out.Provider, cause)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, apperrors.NewInternalError(fmt.Errorf("encode output: %w", err)))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"source":   output.Source,
		"category": output.Category,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
