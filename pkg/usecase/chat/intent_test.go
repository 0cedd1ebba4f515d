package chat_test

import (
	"path/filepath"
	"testing"

	"github.com/granary-dev/granary/pkg/usecase/chat"
	"github.com/m-mizutani/gt"
)

func TestKeywordClassifierDefaults(t *testing.T) {
	c := chat.NewKeywordClassifier()

	testCases := []struct {
		text   string
		expect chat.Intent
	}{
		{"show me the top customers", chat.IntentStructuredQuery},
		{"what was our total revenue?", chat.IntentStructuredQuery},
		{"TOP CUSTOMERS PLEASE", chat.IntentStructuredQuery},
		{"how do I reset my password?", chat.IntentGeneralChat},
		{"tell me about the weather", chat.IntentGeneralChat},
	}

	for _, tc := range testCases {
		gt.Equal(t, c.Classify(tc.text), tc.expect)
	}
}

func TestKeywordClassifierCustomKeywords(t *testing.T) {
	c := chat.NewKeywordClassifier("invoice")

	gt.Equal(t, c.Classify("where is my invoice?"), chat.IntentStructuredQuery)
	// custom keywords replace the defaults
	gt.Equal(t, c.Classify("top customers"), chat.IntentGeneralChat)
}

func TestLoadKeywordClassifier(t *testing.T) {
	c, err := chat.LoadKeywordClassifier(filepath.Join("testdata", "rules.yml"))
	gt.NoError(t, err)

	gt.Equal(t, c.Classify("I need a refund"), chat.IntentStructuredQuery)
	gt.Equal(t, c.Classify("send the invoice"), chat.IntentStructuredQuery)
	gt.Equal(t, c.Classify("top customers"), chat.IntentGeneralChat)
}

func TestLoadKeywordClassifierMissingFile(t *testing.T) {
	_, err := chat.LoadKeywordClassifier(filepath.Join("testdata", "no-such-file.yml"))
	gt.Error(t, err)
}

func TestLoadKeywordClassifierEmptyRules(t *testing.T) {
	_, err := chat.LoadKeywordClassifier(filepath.Join("testdata", "empty.yml"))
	gt.Error(t, err)
}
