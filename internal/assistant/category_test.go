package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		expected  Category
	}{
		{"where", "Where is the Watch?", CategoryLocation},
		{"location keyword", "What's the location of my car", CategoryLocation},
		{"location beats value", "where is my most valuable painting", CategoryLocation},
		{"location beats insurance", "Where are my insurance papers?", CategoryLocation},
		{"value", "How much is the car worth?", CategoryValue},
		{"price", "what price did I record", CategoryValue},
		{"assets", "list my assets", CategoryAssets},
		{"property", "Tell me about my property", CategoryAssets},
		{"insurance beats help", "can you help me with insurance", CategoryInsurance},
		{"protect", "protect my jewellery", CategoryInsurance},
		{"family", "who will inherit the house", CategoryFamily},
		{"greeting", "Hello there", CategoryGreeting},
		{"greeting substring", "What is this?", CategoryGreeting},
		{"help", "help me please", CategoryHelp},
		{"hi inside this", "how does this app work", CategoryGreeting},
		{"how", "how do I start", CategoryHelp},
		{"documents", "I need paperwork", CategoryDocuments},
		{"financial", "I need money advice", CategoryFinancial},
		{"tax", "tell me about taxes", CategoryFinancial},
		{"general", "good morning", CategoryGeneral},
		{"empty", "", CategoryGeneral},
		{"case insensitive", "WHERE IS MY CAR", CategoryLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.utterance))
		})
	}
}

func TestClassify_WhereAlwaysLocation(t *testing.T) {
	utterances := []string{
		"where",
		"anywhere near the price list?",
		"location",
		"hello, where did I put my tax documents",
		"family property location",
	}
	for _, u := range utterances {
		assert.Equal(t, CategoryLocation, Classify(u), u)
	}
}

func TestCategories(t *testing.T) {
	categories := Categories()
	assert.Len(t, categories, 10)
	assert.Equal(t, CategoryLocation, categories[0])
	assert.Equal(t, CategoryGeneral, categories[len(categories)-1])
}
