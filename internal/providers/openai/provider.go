package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/logger"
)

const (
	Name        = "openai"
	DisplayName = "OpenAI GPT"

	systemPrompt = "You are an estate inventory assistant. Answer briefly and only from the asset list when the question is about specific assets."
)

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

func ConfigFrom(c config.OpenAIConfig) *Config {
	return &Config{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
	}
}

// Provider calls an OpenAI compatible chat completion API. Without an API
// key it stays registered but reports itself as not configured.
type Provider struct {
	config *Config
	client *openai.Client
	logger logger.Logger
}

func New(cfg *Config, log logger.Logger) *Provider {
	p := &Provider{
		config: cfg,
		logger: log.With(map[string]interface{}{"provider": Name}),
	}
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		p.client = openai.NewClientWithConfig(clientConfig)
	}
	return p
}

func (p *Provider) Name() string        { return Name }
func (p *Provider) DisplayName() string { return DisplayName }
func (p *Provider) Configured() bool    { return p.client != nil }

func (p *Provider) Generate(ctx context.Context, prompt, assetContext string) (string, error) {
	if !p.Configured() {
		return "", fmt.Errorf("%w: %s requires an API key", assistant.ErrProviderNotConfigured, Name)
	}

	system := systemPrompt
	if strings.TrimSpace(assetContext) != "" {
		system += "\n\n" + assetContext
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.config.Model,
		MaxTokens: p.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", assistant.ErrUpstreamMalformed)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty content", assistant.ErrUpstreamMalformed)
	}
	p.logger.Debug("chat completion", map[string]interface{}{
		"model":            resp.Model,
		"totalTokens":      resp.Usage.TotalTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	})
	return text, nil
}

func classifyError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", assistant.ErrUpstreamTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %d %s", assistant.ErrUpstreamStatus, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %d", assistant.ErrUpstreamStatus, reqErr.HTTPStatusCode)
	}
	return fmt.Errorf("%w: %v", assistant.ErrUpstreamUnavailable, err)
}
