package assistant

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// assetsPlaceholder is replaced with the comma separated asset names.
const assetsPlaceholder = "{assets}"

const fillerReply = "I'm here to help you manage your estate inventory. Ask me about your assets, their locations or their values."

// Chooser returns an index in [0, n).
type Chooser func(n int) int

var defaultVariants = map[Category][]string{
	CategoryGreeting: {
		"Hello! I'm your estate assistant. How can I help you with your inventory today?",
		"Hi there! Ask me anything about your assets, their locations or their values.",
		"Hey! I can help you keep track of your estate. What would you like to know?",
		"Welcome back! What can I help you find in your inventory?",
	},
	CategoryHelp: {
		"I can tell you where your assets are kept, what they are worth, and help you think about insurance, documents and succession.",
		"Try asking \"Where is the watch?\" or \"How much is the car worth?\" and I'll look it up in your inventory.",
		"I can answer questions about asset locations and values, and share tips on keeping your estate organised.",
	},
	CategoryInsurance: {
		"Valuable assets should be insured for their current replacement value. Review your policies whenever an appraisal changes.",
		"Keep photos and appraisals of high-value items with your inventory so insurance claims are easier to settle.",
		"Consider a scheduled personal property rider for jewellery, art and collectibles that exceed standard policy limits.",
		"Storing valuables in a secure location such as a safe or vault can lower premiums and protect against loss.",
	},
	CategoryFamily: {
		"Recording who should inherit each asset makes succession far simpler for your family.",
		"Share the location of your inventory with a trusted family member or executor.",
		"A clear inventory helps avoid disputes between heirs. Consider noting intended beneficiaries next to each asset.",
	},
	CategoryDocuments: {
		"Keep deeds, titles, receipts and appraisals alongside your inventory so everything is in one place.",
		"Scanned copies of important papers stored securely make it easier for your executor to find records.",
		"Update your records whenever you buy, sell or move an asset.",
	},
	CategoryFinancial: {
		"An up-to-date inventory helps your advisor plan for estate and inheritance tax.",
		"Tracking asset values over time gives you a clearer picture of your net worth.",
		"Speak with a financial professional about how your assets are held and how they will pass on.",
	},
	CategoryGeneral: {
		"I'm here to help you manage your estate inventory. Ask me about your assets, their locations or their values.",
		"Could you tell me a bit more? I can help with asset locations, values, insurance and succession planning.",
		"I'm not sure I understood that. Try asking where an asset is kept or what it is worth.",
	},
}

var defaultAssetsWithInventory = []string{
	"You currently have these assets in your inventory: {assets}.",
	"Here's what I have on record: {assets}. Ask me where any of them is kept or what it is worth.",
	"Your inventory lists {assets}. Would you like to know the location or value of one of them?",
}

var defaultAssetsEmpty = []string{
	"You don't have any assets recorded yet. Start by adding an asset with its type, value and location.",
	"Your inventory is empty. Add your first asset and I can help you keep track of it.",
	"I don't see any assets yet. Once you add some I can tell you where they are and what they are worth.",
}

// Bank holds the reply variants for every category that is answered without
// looking up asset data. A Bank is read-only once built.
type Bank struct {
	variants            map[Category][]string
	assetsWithInventory []string
	assetsEmpty         []string
	choose              Chooser
}

// DefaultBank returns the built-in reply variants with a uniform random chooser.
func DefaultBank() *Bank {
	variants := make(map[Category][]string, len(defaultVariants))
	for c, v := range defaultVariants {
		variants[c] = append([]string(nil), v...)
	}
	return &Bank{
		variants:            variants,
		assetsWithInventory: append([]string(nil), defaultAssetsWithInventory...),
		assetsEmpty:         append([]string(nil), defaultAssetsEmpty...),
		choose:              rand.Intn,
	}
}

// WithChooser returns a copy of the bank that picks variants with choose.
func (b *Bank) WithChooser(choose Chooser) *Bank {
	clone := *b
	clone.choose = choose
	return &clone
}

// Candidates returns every reply the bank could give for the category,
// rendered against records. Contextual categories have no candidates.
func (b *Bank) Candidates(category Category, records []AssetRecord) []string {
	if category == CategoryAssets {
		if len(records) == 0 {
			return append([]string(nil), b.assetsEmpty...)
		}
		names := strings.Join(assetNames(records), ", ")
		out := make([]string, len(b.assetsWithInventory))
		for i, t := range b.assetsWithInventory {
			out[i] = strings.ReplaceAll(t, assetsPlaceholder, names)
		}
		return out
	}
	return append([]string(nil), b.variants[category]...)
}

// Pick returns one candidate for the category chosen uniformly at random.
func (b *Bank) Pick(category Category, records []AssetRecord) string {
	candidates := b.Candidates(category, records)
	if len(candidates) == 0 {
		return fillerReply
	}
	return candidates[b.choose(len(candidates))]
}

type templateFile struct {
	Categories          map[string][]string `yaml:"categories"`
	AssetsWithInventory []string            `yaml:"assets_with_inventory"`
	AssetsEmpty         []string            `yaml:"assets_empty"`
}

// LoadTemplates reads a YAML file and overlays it on the default bank.
// An empty path returns the default bank.
func LoadTemplates(path string) (*Bank, error) {
	bank := DefaultBank()
	if path == "" {
		return bank, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return bank.Override(data)
}

// Override returns a copy of the bank with the lists in data replacing the
// matching built-in lists. Lists that are absent or empty are kept.
func (b *Bank) Override(data []byte) (*Bank, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	clone := &Bank{
		variants:            make(map[Category][]string, len(b.variants)),
		assetsWithInventory: b.assetsWithInventory,
		assetsEmpty:         b.assetsEmpty,
		choose:              b.choose,
	}
	for c, v := range b.variants {
		clone.variants[c] = v
	}

	for name, list := range file.Categories {
		category := Category(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := b.variants[category]; !ok {
			return nil, fmt.Errorf("templates: category %q cannot be overridden", name)
		}
		if len(list) > 0 {
			clone.variants[category] = append([]string(nil), list...)
		}
	}
	if len(file.AssetsWithInventory) > 0 {
		for _, t := range file.AssetsWithInventory {
			if !strings.Contains(t, assetsPlaceholder) {
				return nil, fmt.Errorf("templates: assets_with_inventory variant %q lacks %s", t, assetsPlaceholder)
			}
		}
		clone.assetsWithInventory = append([]string(nil), file.AssetsWithInventory...)
	}
	if len(file.AssetsEmpty) > 0 {
		clone.assetsEmpty = append([]string(nil), file.AssetsEmpty...)
	}
	return clone, nil
}
