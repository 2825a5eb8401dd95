package huggingface

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/tidwall/gjson"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/config"
	commonhttp "estate-assistant/internal/common/http"
	"estate-assistant/internal/common/logger"
)

const (
	Name        = "huggingface"
	DisplayName = "Hugging Face (Free)"
)

type Config struct {
	URL         string
	APIToken    string
	MaxLength   int
	Temperature float64
	DoSample    bool
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// ConfigFrom maps the loaded configuration section onto a provider Config.
func ConfigFrom(c config.HuggingFaceConfig) *Config {
	return &Config{
		URL:         c.URL,
		APIToken:    c.APIToken,
		MaxLength:   c.MaxLength,
		Temperature: c.Temperature,
		DoSample:    c.DoSample,
		Timeout:     config.GetDuration(c.Timeout),
		MaxRetries:  c.MaxRetries,
		RetryDelay:  200 * time.Millisecond,
	}
}

type generationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters generationParameters `json:"parameters"`
}

type generationParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
}

// statusError is a non-2xx reply from the inference API.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }
func (e *statusError) Unwrap() error { return assistant.ErrUpstreamStatus }

// Provider calls the Hugging Face inference API.
type Provider struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func New(cfg *Config, log logger.Logger) *Provider {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Provider{
		config: cfg,
		client: commonhttp.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"provider": Name}),
	}
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }
func (p *Provider) Configured() bool    { return p.config.URL != "" }

func (p *Provider) Generate(ctx context.Context, prompt, assetContext string) (string, error) {
	if !p.Configured() {
		return "", fmt.Errorf("%w: %s", assistant.ErrProviderNotConfigured, Name)
	}

	payload := generationRequest{
		Inputs: buildInputs(prompt, assetContext),
		Parameters: generationParameters{
			MaxLength:   p.config.MaxLength,
			Temperature: p.config.Temperature,
			DoSample:    p.config.DoSample,
		},
	}
	headers := map[string]string{}
	if p.config.APIToken != "" {
		headers["Authorization"] = "Bearer " + p.config.APIToken
	}

	var reply string
	err := retry.Do(
		func() error {
			resp, err := p.client.PostJSON(ctx, p.config.URL, headers, payload)
			if err != nil {
				return fmt.Errorf("%w: %v", assistant.ErrUpstreamUnavailable, err)
			}
			if !resp.OK() {
				return &statusError{code: resp.StatusCode}
			}
			text, err := ParseGeneratedText(resp.Body)
			if err != nil {
				return err
			}
			reply = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.config.MaxRetries+1)),
		retry.Delay(p.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("retrying generation request", map[string]interface{}{
				"attempt": n + 1,
				"error":   err.Error(),
			})
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", assistant.ErrUpstreamTimeout, err)
		}
		return "", err
	}
	return reply, nil
}

func buildInputs(prompt, assetContext string) string {
	if strings.TrimSpace(assetContext) == "" {
		return prompt
	}
	return assetContext + "\n\nUser: " + prompt
}

// isRetryable retries transport failures, 429 and 5xx.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == 429 || se.code >= 500
	}
	return errors.Is(err, assistant.ErrUpstreamUnavailable)
}

// ParseGeneratedText accepts [{"generated_text": "..."}] or
// {"generated_text": "..."}. Anything else is malformed.
func ParseGeneratedText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: invalid json", assistant.ErrUpstreamMalformed)
	}

	root := gjson.ParseBytes(body)
	var text gjson.Result
	switch {
	case root.IsArray():
		text = root.Get("0.generated_text")
	case root.IsObject():
		text = root.Get("generated_text")
	}

	if text.Type != gjson.String || strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: no generated_text", assistant.ErrUpstreamMalformed)
	}
	return text.String(), nil
}
