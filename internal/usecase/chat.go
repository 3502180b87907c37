package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/session"
)

const (
	DefaultSessionID = "default"

	emptyInputReply = "How are you feeling today? I can suggest a perfect coffee for your mood!"
	greetingReply   = "Hello there! Tell me how you're feeling and I'll find the perfect cup for you."
	troubleReply    = "I'm having coffee troubles. Maybe try a classic cappuccino?"
	listHeader      = "Available coffee types:"
)

// MoodRecommender suggests a product for a free-text mood message.
type MoodRecommender interface {
	Recommend(ctx context.Context, userText string, history []domain.Turn) (Recommendation, error)
}

type ChatInput struct {
	Message         string
	SessionID       string
	NewConversation bool
}

// ChatOutput is the reply to one chat message. PreviousMessages excludes the
// bot turn carrying Suggestion. SearchQuery is nil when no product applies.
type ChatOutput struct {
	Suggestion       string
	PreviousMessages []domain.Turn
	Timestamp        time.Time
	IsList           bool
	DetailedInfo     *domain.DetailedInfo
	SearchQuery      *string
}

type botReply struct {
	text   string
	isList bool
	info   *domain.DetailedInfo
	query  string
}

// ChatService answers chatbot messages and owns the chat read endpoints.
type ChatService struct {
	sessions    session.Store
	catalog     *Catalog
	recommender MoodRecommender
	classifier  Classifier
	now         func() time.Time
}

// NewChatService wires the chatbot. A nil classifier selects SubstringClassifier.
func NewChatService(sessions session.Store, catalog *Catalog, recommender MoodRecommender, classifier Classifier) (*ChatService, error) {
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if recommender == nil {
		return nil, errors.New("usecase: recommender must not be nil")
	}
	if classifier == nil {
		classifier = SubstringClassifier
	}
	return &ChatService{
		sessions:    sessions,
		catalog:     catalog,
		recommender: recommender,
		classifier:  classifier,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Chat answers one message. It never fails: internal errors become a canned
// reply that is stored like any other.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) ChatOutput {
	id := strings.TrimSpace(in.SessionID)
	if id == "" {
		id = DefaultSessionID
	}
	sess := s.sessions.Acquire(id, in.NewConversation)
	defer sess.Release()

	text := strings.TrimSpace(in.Message)
	if text == "" {
		return ChatOutput{
			Suggestion:       emptyInputReply,
			PreviousMessages: sess.Turns(),
			Timestamp:        s.now(),
		}
	}

	history := sess.Turns()
	userTurn := domain.NewUserTurn(text)
	reply, err := s.respond(ctx, text, history)
	if err != nil {
		log.Error().Err(err).Str("component", "chatbot").Str("session_id", id).Msg("chat flow failed")
		reply = botReply{text: troubleReply}
	}

	botTurn := domain.NewBotTurn(reply.text)
	botTurn.IsList = reply.isList
	botTurn.DetailedInfo = reply.info
	sess.Append(userTurn, botTurn)

	out := ChatOutput{
		Suggestion:       reply.text,
		PreviousMessages: append(history, userTurn),
		Timestamp:        s.now(),
		IsList:           reply.isList,
		DetailedInfo:     reply.info,
	}
	if reply.query != "" {
		q := reply.query
		out.SearchQuery = &q
	}
	return out
}

func (s *ChatService) respond(ctx context.Context, text string, history []domain.Turn) (reply botReply, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("usecase: chat panic: %v", p)
		}
	}()

	names, err := s.catalog.Names()
	if err != nil {
		return botReply{}, err
	}

	intent := s.classifier.Classify(text, names)
	switch intent.Kind {
	case IntentGreeting:
		return botReply{text: greetingReply}, nil
	case IntentProduct:
		return s.describeProduct(intent.Product)
	case IntentList:
		return s.listProducts()
	default:
		rec, err := s.recommender.Recommend(ctx, text, history)
		if err != nil {
			return botReply{}, err
		}
		return botReply{text: rec.Text, query: rec.Product}, nil
	}
}

func (s *ChatService) describeProduct(name string) (botReply, error) {
	entry, ok := s.catalog.Lookup(name)
	if !ok {
		return botReply{}, fmt.Errorf("usecase: classified product %q not in catalog", name)
	}
	inStock := s.catalog.LookupStock(entry.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n%s\n(Category: %s)\n", entry.Name, entry.Description, entry.Category)
	reply := botReply{
		info: &domain.DetailedInfo{
			Name:        entry.Name,
			Description: entry.Description,
			Category:    entry.Category,
			InStock:     inStock,
		},
	}
	if inStock {
		b.WriteString("Status: In Stock")
		reply.query = entry.Name
	} else {
		alt := s.catalog.FindInStockAlternative(entry.Name)
		fmt.Fprintf(&b, "Status: Out of Stock\nSorry, %s is currently unavailable. You might enjoy a **%s** instead!", entry.Name, alt)
		reply.query = alt
	}
	reply.text = b.String()
	return reply, nil
}

func (s *ChatService) listProducts() (botReply, error) {
	entries, err := s.catalog.Entries()
	if err != nil {
		return botReply{}, err
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, listHeader)
	for _, e := range entries {
		if e.InStock {
			lines = append(lines, "✓ "+e.Name)
		} else {
			lines = append(lines, "✗ "+e.Name+" (Out of Stock)")
		}
	}
	return botReply{text: strings.Join(lines, "\n"), isList: true}, nil
}

// Conversation returns the stored turns of a session.
func (s *ChatService) Conversation(sessionID string) ([]domain.Turn, error) {
	turns, ok := s.sessions.History(sessionID)
	if !ok {
		return nil, NewError(ErrorNotFound, "conversation_not_found", nil)
	}
	return turns, nil
}

// CoffeeList returns the catalog in enumeration order.
func (s *ChatService) CoffeeList() ([]domain.CatalogEntry, error) {
	entries, err := s.catalog.Entries()
	if err != nil {
		return nil, NewError(ErrorInternal, "catalog_not_loaded", err)
	}
	return entries, nil
}

// CoffeeInfo returns the catalog entry named name, matched case-insensitively.
func (s *ChatService) CoffeeInfo(name string) (domain.CatalogEntry, error) {
	if _, err := s.catalog.Entries(); err != nil {
		return domain.CatalogEntry{}, NewError(ErrorInternal, "catalog_not_loaded", err)
	}
	entry, ok := s.catalog.Lookup(name)
	if !ok {
		return domain.CatalogEntry{}, NewError(ErrorNotFound, "coffee_not_found", nil)
	}
	return entry, nil
}

// RefreshCatalog reloads the catalog snapshot and returns its size.
func (s *ChatService) RefreshCatalog(ctx context.Context) (int, error) {
	if err := s.catalog.Refresh(ctx); err != nil {
		return 0, NewError(ErrorUpstream, "catalog_refresh_error", err)
	}
	names, err := s.catalog.Names()
	if err != nil {
		return 0, NewError(ErrorInternal, "catalog_not_loaded", err)
	}
	log.Info().Str("component", "chatbot").Int("entries", len(names)).Msg("catalog refreshed")
	return len(names), nil
}
