package usecase

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"coffee-shop/internal/domain"
)

const defaultOracleTimeout = 10 * time.Second

// Oracle is the external text-completion service.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var fallbackSuggestions = []string{
	"A classic Latte would be lovely right now.",
	"How about a Cappuccino to brighten your day?",
	"A rich Mocha might be just what you need.",
}

// Recommendation is a mood-based suggestion. Product is empty when no product
// could be recovered from the suggestion, and always empty for a fallback.
type Recommendation struct {
	Text     string
	Product  string
	Fallback bool
}

// Recommender turns a mood message into a single product suggestion.
type Recommender struct {
	oracle  Oracle
	catalog *Catalog
	timeout time.Duration
	intn    func(n int) int
}

func NewRecommender(oracle Oracle, catalog *Catalog, timeout time.Duration) (*Recommender, error) {
	if oracle == nil {
		return nil, errors.New("usecase: oracle must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	return &Recommender{
		oracle:  oracle,
		catalog: catalog,
		timeout: timeout,
		intn:    rand.IntN,
	}, nil
}

// Recommend asks the oracle for a suggestion and corrects it against stock
// and the session's previous recommendation. Oracle failures degrade to a
// canned suggestion; only catalog failures are returned as errors.
func (r *Recommender) Recommend(ctx context.Context, userText string, history []domain.Turn) (Recommendation, error) {
	names, err := r.catalog.Names()
	if err != nil {
		return Recommendation{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	reply, err := r.oracle.Complete(callCtx, buildMoodPrompt(names, userText))
	cancel()
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty oracle reply")
	}
	if err != nil {
		log.Warn().Err(err).Str("component", "chatbot").Msg("oracle call failed, using fallback suggestion")
		return r.fallback(), nil
	}

	text := strings.TrimSpace(reply)
	name := extractProductName(text, names)
	if name == "" {
		return Recommendation{Text: text}, nil
	}

	replaced := []string{}
	if !r.catalog.LookupStock(name) {
		replaced = append(replaced, name)
		alt := r.catalog.FindInStockAlternative(replaced...)
		log.Debug().Str("component", "chatbot").Str("product", name).Str("alternative", alt).Msg("recommended product out of stock")
		text = substituteName(text, name, alt)
		name = alt
	}
	if prev := lastRecommended(history, names); prev != "" && strings.EqualFold(prev, name) {
		replaced = append(replaced, name)
		alt := r.catalog.FindInStockAlternative(replaced...)
		log.Debug().Str("component", "chatbot").Str("product", name).Str("alternative", alt).Msg("avoiding repeated recommendation")
		text = substituteName(text, name, alt)
		name = alt
	}

	return Recommendation{Text: ensureMarked(text, name), Product: name}, nil
}

func (r *Recommender) fallback() Recommendation {
	return Recommendation{
		Text:     fallbackSuggestions[r.intn(len(fallbackSuggestions))],
		Fallback: true,
	}
}

// lastRecommended returns the product named by the most recent bot turn that
// names one.
func lastRecommended(history []domain.Turn, names []string) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender != domain.SenderBot {
			continue
		}
		if name := extractProductName(history[i].Text, names); name != "" {
			return name
		}
	}
	return ""
}
