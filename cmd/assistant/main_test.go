package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
assistant:
  default_provider: openai
logging:
  level: error
  output: stderr
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HUGGINGFACE_API_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProvidersCommand(t *testing.T) {
	out, err := runCLI(t, "providers")
	require.NoError(t, err)

	assert.Contains(t, out, "huggingface")
	assert.Contains(t, out, "Hugging Face (Free)")
	assert.Contains(t, out, "OpenAI GPT")
	assert.Contains(t, out, "false")
}

func TestAskCommand_RulePathWithoutKey(t *testing.T) {
	out, err := runCLI(t, "ask", "Where is the Watch?",
		"--context", "Current assets: Watch (Collectible) - $10,000 - Location: Vault")
	require.NoError(t, err)
	assert.Equal(t, "Your Watch is located at: Vault\n", out)
}

func TestAskCommand_UnknownProvider(t *testing.T) {
	_, err := runCLI(t, "ask", "hello", "--provider", "claude")
	assert.Error(t, err)
	askProvider = ""
}
