package assistant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank_VariantCounts(t *testing.T) {
	bank := DefaultBank()
	for _, category := range Categories() {
		if category == CategoryLocation || category == CategoryValue {
			assert.Empty(t, bank.Candidates(category, nil), category)
			continue
		}
		n := len(bank.Candidates(category, nil))
		assert.GreaterOrEqual(t, n, 3, category)
		assert.LessOrEqual(t, n, 5, category)
	}
	assert.Len(t, bank.Candidates(CategoryAssets, sampleRecords()), len(defaultAssetsWithInventory))
}

func TestBank_PickFallsBackToFiller(t *testing.T) {
	assert.Equal(t, fillerReply, DefaultBank().Pick(CategoryLocation, nil))
}

func TestBank_Override(t *testing.T) {
	data := []byte(`
categories:
  greeting:
    - "Good day."
    - "Greetings."
  help: []
assets_with_inventory:
  - "On file: {assets}"
`)
	base := DefaultBank()
	bank, err := base.Override(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Good day.", "Greetings."}, bank.Candidates(CategoryGreeting, nil))
	assert.Equal(t, base.Candidates(CategoryHelp, nil), bank.Candidates(CategoryHelp, nil), "empty list keeps defaults")
	assert.Equal(t, []string{"On file: Watch, Car"}, bank.Candidates(CategoryAssets, sampleRecords()))
	assert.Equal(t, base.Candidates(CategoryAssets, nil), bank.Candidates(CategoryAssets, nil))

	assert.NotEqual(t, []string{"Good day.", "Greetings."}, base.Candidates(CategoryGreeting, nil), "base bank untouched")
}

func TestBank_OverrideErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"contextual category", "categories:\n  location:\n    - \"somewhere\"\n"},
		{"unknown category", "categories:\n  weather:\n    - \"sunny\"\n"},
		{"missing placeholder", "assets_with_inventory:\n  - \"You have things\"\n"},
		{"invalid yaml", "categories: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultBank().Override([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	bank, err := LoadTemplates("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBank().Candidates(CategoryGeneral, nil), bank.Candidates(CategoryGeneral, nil))

	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  family:\n    - \"Plan ahead.\"\n"), 0o600))
	bank, err = LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plan ahead."}, bank.Candidates(CategoryFamily, nil))

	_, err = LoadTemplates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
