package chat

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

type Intent string

const (
	IntentGeneralChat     Intent = "general_chat"
	IntentStructuredQuery Intent = "structured_query"
)

// Classifier decides whether a message goes through retrieval or is answered
// from the structured analytics dataset
type Classifier interface {
	Classify(text string) Intent
}

// defaultKeywords trigger the structured-query route when no rule file is
// configured
var defaultKeywords = []string{
	"customer",
	"purchase",
	"sales",
	"buy",
	"product",
	"amount",
	"total",
	"top",
	"revenue",
}

// KeywordClassifier routes messages containing any of its keywords
// (case-insensitive substring match) to the structured-query intent
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier creates a classifier with the given keywords, falling
// back to the default sales keyword list when none are given
func NewKeywordClassifier(keywords ...string) *KeywordClassifier {
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	return &KeywordClassifier{keywords: lowered}
}

func (c *KeywordClassifier) Classify(text string) Intent {
	lowered := strings.ToLower(text)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return IntentStructuredQuery
		}
	}
	return IntentGeneralChat
}

type classifierRules struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordClassifier reads keyword rules from a YAML file
func LoadKeywordClassifier(path string) (*KeywordClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read classifier rules", goerr.V("path", path))
	}

	var rules classifierRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, goerr.Wrap(err, "failed to parse classifier rules", goerr.V("path", path))
	}

	if len(rules.Keywords) == 0 {
		return nil, goerr.New("classifier rules contain no keywords", goerr.V("path", path))
	}

	return NewKeywordClassifier(rules.Keywords...), nil
}
