package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/usecase"
)

type chatRequest struct {
	Message           string `json:"message"`
	SessionID         string `json:"sessionId"`
	IsNewConversation bool   `json:"isNewConversation"`
}

type chatResponse struct {
	Suggestion       string               `json:"suggestion"`
	PreviousMessages []domain.Turn        `json:"previousMessages"`
	Timestamp        time.Time            `json:"timestamp"`
	IsList           bool                 `json:"isList"`
	DetailedInfo     *domain.DetailedInfo `json:"detailedInfo,omitempty"`
	SearchQuery      *string              `json:"searchQuery,omitempty"`
}

// chatbot always answers 200 once the body parses; the chat service turns
// every internal failure into a reply.
func (h *Handler) chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out := h.svc.Chat.Chat(r.Context(), usecase.ChatInput{
		Message:         req.Message,
		SessionID:       req.SessionID,
		NewConversation: req.IsNewConversation,
	})

	prev := out.PreviousMessages
	if prev == nil {
		prev = []domain.Turn{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Suggestion:       out.Suggestion,
		PreviousMessages: prev,
		Timestamp:        out.Timestamp,
		IsList:           out.IsList,
		DetailedInfo:     out.DetailedInfo,
		SearchQuery:      out.SearchQuery,
	})
}

type conversationResponse struct {
	Conversation []domain.Turn `json:"conversation"`
	Timestamp    time.Time     `json:"timestamp"`
}

func (h *Handler) conversation(w http.ResponseWriter, r *http.Request) {
	turns, err := h.svc.Chat.Conversation(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{Conversation: turns, Timestamp: h.now()})
}

type coffeeListResponse struct {
	Coffees   []string  `json:"coffees"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) coffeeList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Chat.CoffeeList()
	if err != nil {
		writeError(w, r, err)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	writeJSON(w, http.StatusOK, coffeeListResponse{Coffees: names, Count: len(names), Timestamp: h.now()})
}

type coffeeInfoResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *Handler) coffeeInfo(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Chat.CoffeeInfo(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coffeeInfoResponse{
		Name:        entry.Name,
		Description: entry.Description,
		Category:    entry.Category,
		InStock:     entry.InStock,
		Timestamp:   h.now(),
	})
}

type refreshResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *Handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Chat.RefreshCatalog(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Message: "Catalog refreshed", Count: n})
}
