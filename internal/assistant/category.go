package assistant

import "strings"

// Category is the single topic assigned to one utterance.
type Category string

const (
	CategoryGreeting  Category = "greeting"
	CategoryHelp      Category = "help"
	CategoryAssets    Category = "assets"
	CategoryLocation  Category = "location"
	CategoryValue     Category = "value"
	CategoryInsurance Category = "insurance"
	CategoryFamily    Category = "family"
	CategoryDocuments Category = "documents"
	CategoryFinancial Category = "financial"
	CategoryGeneral   Category = "general"
)

type keywordRule struct {
	category Category
	keywords []string
}

// classificationRules is evaluated top to bottom and the first hit wins.
// Domain intents sit above help because "what" and "how" appear in most questions.
var classificationRules = []keywordRule{
	{CategoryLocation, []string{"where", "location"}},
	{CategoryValue, []string{"how much", "value", "worth", "price"}},
	{CategoryAssets, []string{"asset", "property"}},
	{CategoryInsurance, []string{"insurance", "protect", "secure"}},
	{CategoryFamily, []string{"family", "inherit", "succession"}},
	{CategoryGreeting, []string{"hello", "hi", "hey"}},
	{CategoryHelp, []string{"help", "what", "how"}},
	{CategoryDocuments, []string{"doc", "paper", "record"}},
	{CategoryFinancial, []string{"tax", "financial", "money"}},
}

// Classify maps an utterance to a Category by substring match.
func Classify(utterance string) Category {
	lower := strings.ToLower(utterance)
	for _, rule := range classificationRules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return CategoryGeneral
}

// Categories lists every category in classification order, general last.
func Categories() []Category {
	out := make([]Category, 0, len(classificationRules)+1)
	for _, rule := range classificationRules {
		out = append(out, rule.category)
	}
	return append(out, CategoryGeneral)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
