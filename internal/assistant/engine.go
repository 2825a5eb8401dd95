package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate-assistant/internal/common/logger"
	"estate-assistant/internal/common/metrics"
)

// Source says where a reply came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceCache    Source = "cache"
	SourceRules    Source = "rules"
)

// FallbackReason says why the rule path answered instead of a provider.
type FallbackReason string

const (
	FallbackNone              FallbackReason = ""
	FallbackUnknownProvider   FallbackReason = "unknown_provider"
	FallbackNotConfigured     FallbackReason = "not_configured"
	FallbackTimeout           FallbackReason = "timeout"
	FallbackBadStatus         FallbackReason = "bad_status"
	FallbackMalformedResponse FallbackReason = "malformed_response"
	FallbackUnavailable       FallbackReason = "unavailable"
)

const DefaultTimeout = 8 * time.Second

type Request struct {
	Prompt  string
	Context string
	// Provider overrides the selector default for this call only.
	Provider string
}

// Outcome is the full result of one call. Err holds the provider failure
// that caused a fallback and is never returned to callers of Generate.
type Outcome struct {
	Reply    string
	Source   Source
	Provider string
	Category Category
	Fallback FallbackReason
	Err      error
}

type EngineConfig struct {
	Timeout time.Duration
}

// Engine answers prompts with the selected provider and falls back to the
// rule path on any provider failure.
type Engine struct {
	config   EngineConfig
	selector *Selector
	rules    *RuleEngine
	cache    ReplyCache
	logger   logger.Logger
}

// NewEngine builds an Engine. cache may be nil.
func NewEngine(config EngineConfig, selector *Selector, rules *RuleEngine, cache ReplyCache, log logger.Logger) *Engine {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if rules == nil {
		rules = NewRuleEngine(nil)
	}
	return &Engine{
		config:   config,
		selector: selector,
		rules:    rules,
		cache:    cache,
		logger:   log.With(map[string]interface{}{"component": "assistant"}),
	}
}

func (e *Engine) Selector() *Selector {
	return e.selector
}

// Generate always returns a non-empty reply.
func (e *Engine) Generate(ctx context.Context, req Request) string {
	return e.Attempt(ctx, req).Reply
}

// Attempt runs one call and reports how the reply was produced.
func (e *Engine) Attempt(ctx context.Context, req Request) Outcome {
	category := Classify(req.Prompt)

	sel, err := e.selector.Resolve(req.Provider)
	if err != nil {
		return e.fallback(req, req.Provider, err)
	}
	if !sel.Provider.Configured() {
		return e.fallback(req, sel.Name, fmt.Errorf("%w: %s", ErrProviderNotConfigured, sel.Name))
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	key := CacheKey(sel.Name, req.Context, req.Prompt)
	if reply, ok := e.lookupCache(attemptCtx, key); ok {
		return e.record(Outcome{Reply: reply, Source: SourceCache, Provider: sel.Name, Category: category})
	}

	start := time.Now()
	reply, err := e.callProvider(attemptCtx, sel.Provider, req)
	metrics.ProviderDuration.WithLabelValues(sel.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		return e.fallback(req, sel.Name, err)
	}

	e.storeCache(attemptCtx, key, reply)
	e.logger.Debug("provider reply", map[string]interface{}{
		"provider": sel.Name,
		"category": string(category),
		"duration": time.Since(start).String(),
	})
	return e.record(Outcome{Reply: reply, Source: SourceProvider, Provider: sel.Name, Category: category})
}

// callProvider runs the provider in its own goroutine so a backend that
// ignores ctx still cannot hold the caller past the timeout.
func (e *Engine) callProvider(ctx context.Context, p Provider, req Request) (string, error) {
	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := p.Generate(ctx, req.Prompt, req.Context)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(res.err, ErrUpstreamTimeout) {
				return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, res.err)
			}
			return "", res.err
		}
		reply := strings.TrimSpace(res.reply)
		if reply == "" {
			return "", fmt.Errorf("%w: empty reply", ErrUpstreamMalformed)
		}
		return reply, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", ErrUpstreamTimeout, p.Name(), e.config.Timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
	}
}

func (e *Engine) fallback(req Request, provider string, cause error) Outcome {
	reply, category := e.rules.Respond(req.Prompt, req.Context)
	reason := FallbackReasonFor(cause)

	metrics.FallbacksTotal.WithLabelValues(provider, string(reason)).Inc()
	e.logger.Warn("provider unavailable, using rule path", map[string]interface{}{
		"provider": provider,
		"reason":   string(reason),
		"category": string(category),
		"error":    cause.Error(),
	})

	return e.record(Outcome{
		Reply:    reply,
		Source:   SourceRules,
		Provider: provider,
		Category: category,
		Fallback: reason,
		Err:      cause,
	})
}

func (e *Engine) record(out Outcome) Outcome {
	metrics.RepliesTotal.WithLabelValues(string(out.Category), string(out.Source)).Inc()
	return out
}

func (e *Engine) lookupCache(ctx context.Context, key string) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	reply, ok, err := e.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		e.logger.Warn("reply cache lookup failed", map[string]interface{}{"error": err.Error()})
		return "", false
	case !ok || strings.TrimSpace(reply) == "":
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return "", false
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return reply, true
	}
}

func (e *Engine) storeCache(ctx context.Context, key, reply string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, reply); err != nil {
		e.logger.Warn("reply cache store failed", map[string]interface{}{"error": err.Error()})
	}
}

// FallbackReasonFor maps a provider failure to its fallback reason.
func FallbackReasonFor(err error) FallbackReason {
	switch {
	case err == nil:
		return FallbackNone
	case errors.Is(err, ErrUnknownProvider):
		return FallbackUnknownProvider
	case errors.Is(err, ErrProviderNotConfigured):
		return FallbackNotConfigured
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return FallbackTimeout
	case errors.Is(err, ErrUpstreamStatus):
		return FallbackBadStatus
	case errors.Is(err, ErrUpstreamMalformed):
		return FallbackMalformedResponse
	default:
		return FallbackUnavailable
	}
}
