package assistant

import (
	"fmt"
	"strings"
)

const (
	noAssetsLocationReply = "I don't see any assets in your inventory yet. Add your assets with their locations and I can tell you where each one is kept."
	noAssetsValueReply    = "I don't see any assets in your inventory yet. Add your assets with their values and I can tell you what each one is worth."
)

// RuleEngine produces deterministic keyword-driven replies. It needs no
// network access and is safe for concurrent use.
type RuleEngine struct {
	bank *Bank
}

func NewRuleEngine(bank *Bank) *RuleEngine {
	if bank == nil {
		bank = DefaultBank()
	}
	return &RuleEngine{bank: bank}
}

// Bank exposes the variants the engine draws from.
func (r *RuleEngine) Bank() *Bank {
	return r.bank
}

// Respond classifies the prompt and builds the reply for its category.
func (r *RuleEngine) Respond(prompt, context string) (string, Category) {
	category := Classify(prompt)
	records := ParseContext(context)

	switch category {
	case CategoryLocation:
		return locationReply(prompt, records), category
	case CategoryValue:
		return valueReply(prompt, records), category
	default:
		return r.bank.Pick(category, records), category
	}
}

func locationReply(prompt string, records []AssetRecord) string {
	if len(records) == 0 {
		return noAssetsLocationReply
	}

	name := ExtractAssetName(prompt)
	if name == "" {
		parts := make([]string, len(records))
		for i, rec := range records {
			parts[i] = fmt.Sprintf("your %s is in %s", rec.Name, rec.Location)
		}
		return "Here is where your assets are kept: " + strings.Join(parts, ", ") + "."
	}

	rec, ok := FindAsset(records, name)
	if !ok {
		return notFoundReply(name, records)
	}
	return fmt.Sprintf("Your %s is located at: %s", rec.Name, rec.Location)
}

func valueReply(prompt string, records []AssetRecord) string {
	if len(records) == 0 {
		return noAssetsValueReply
	}

	name := ExtractAssetName(prompt)
	if name == "" {
		parts := make([]string, len(records))
		for i, rec := range records {
			parts[i] = fmt.Sprintf("your %s is worth %s", rec.Name, rec.Value)
		}
		return "Here are the values of your assets: " + strings.Join(parts, ", ") + "."
	}

	rec, ok := FindAsset(records, name)
	if !ok {
		return notFoundReply(name, records)
	}
	return fmt.Sprintf("Your %s (%s) is valued at %s.", rec.Name, rec.Type, rec.Value)
}

func notFoundReply(name string, records []AssetRecord) string {
	return fmt.Sprintf("I couldn't find an asset called %q. Your assets are: %s.",
		name, strings.Join(assetNames(records), ", "))
}
