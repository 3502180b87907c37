package usecase

import "strings"

// IntentKind is the category of an inbound chat message.
type IntentKind int

const (
	IntentMood IntentKind = iota
	IntentGreeting
	IntentProduct
	IntentList
)

func (k IntentKind) String() string {
	switch k {
	case IntentGreeting:
		return "greeting"
	case IntentProduct:
		return "product"
	case IntentList:
		return "list"
	default:
		return "mood"
	}
}

// Intent is the classification of one message. Product holds the canonical
// catalog name for IntentProduct.
type Intent struct {
	Kind    IntentKind
	Product string
}

// Classifier maps raw user text to an Intent given the catalog names in
// enumeration order.
type Classifier interface {
	Classify(text string, names []string) Intent
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(text string, names []string) Intent

func (f ClassifierFunc) Classify(text string, names []string) Intent { return f(text, names) }

var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"hiya":           {},
	"howdy":          {},
	"greetings":      {},
	"yo":             {},
	"hi there":       {},
	"hello there":    {},
	"hey there":      {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
	"good day":       {},
}

var listTriggers = []string{
	"list",
	"types",
	"kinds",
	"varieties",
	"options",
	"all coffee",
	"what do you have",
	"show me",
}

// SubstringClassifier is the default Classifier. A greeting must match a
// known phrase exactly; a product is recognised when its name occurs anywhere
// in the text, the first catalog name found winning.
var SubstringClassifier Classifier = ClassifierFunc(classify)

func classify(text string, names []string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if _, ok := greetings[lower]; ok {
		return Intent{Kind: IntentGreeting}
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return Intent{Kind: IntentProduct, Product: name}
		}
	}
	for _, trigger := range listTriggers {
		if strings.Contains(lower, trigger) {
			return Intent{Kind: IntentList}
		}
	}
	return Intent{Kind: IntentMood}
}
