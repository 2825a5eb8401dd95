package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HUGGINGFACE_API_TOKEN", "")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: test-assistant\n"))
	require.NoError(t, err)

	assert.Equal(t, "test-assistant", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "huggingface", cfg.Assistant.DefaultProvider)
	assert.Equal(t, 8000, cfg.Assistant.Timeout)
	assert.Equal(t, 150, cfg.Providers.HuggingFace.MaxLength)
	assert.InDelta(t, 0.7, cfg.Providers.HuggingFace.Temperature, 0.0001)
	assert.True(t, cfg.Providers.HuggingFace.DoSample)
	assert.Equal(t, "assistant:reply", cfg.Assistant.Cache.Prefix)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Providers.OpenAI.APIKey)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_HF_TOKEN", "hf_secret")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := LoadFromFile(writeConfig(t, `
assistant:
  default_provider: openai
  timeout: 2500
providers:
  huggingface:
    api_token: ${TEST_HF_TOKEN}
    do_sample: false
`))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Assistant.DefaultProvider)
	assert.Equal(t, 2500*time.Millisecond, GetDuration(cfg.Assistant.Timeout))
	assert.Equal(t, "hf_secret", cfg.Providers.HuggingFace.APIToken)
	assert.False(t, cfg.Providers.HuggingFace.DoSample)
	assert.Equal(t, "sk-from-env", cfg.Providers.OpenAI.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown default provider",
			body:    "assistant:\n  default_provider: anthropic\n",
			wantErr: "default_provider",
		},
		{
			name:    "postgres enabled without host",
			body:    "database:\n  postgres:\n    enabled: true\n",
			wantErr: "database.postgres.host",
		},
		{
			name:    "cache enabled without redis",
			body:    "assistant:\n  cache:\n    enabled: true\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "camunda enabled without broker",
			body:    "camunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
