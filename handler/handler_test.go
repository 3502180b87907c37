package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/usecase"
)

type stubChat struct {
	out     usecase.ChatOutput
	in      usecase.ChatInput
	turns   []domain.Turn
	entries []domain.CatalogEntry
	err     error
	refresh int
}

func (s *stubChat) Chat(_ context.Context, in usecase.ChatInput) usecase.ChatOutput {
	s.in = in
	return s.out
}

func (s *stubChat) Conversation(string) ([]domain.Turn, error) { return s.turns, s.err }

func (s *stubChat) CoffeeList() ([]domain.CatalogEntry, error) { return s.entries, s.err }

func (s *stubChat) CoffeeInfo(name string) (domain.CatalogEntry, error) {
	if s.err != nil {
		return domain.CatalogEntry{}, s.err
	}
	for _, e := range s.entries {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return domain.CatalogEntry{}, usecase.NewError(usecase.ErrorNotFound, "coffee_not_found", nil)
}

func (s *stubChat) RefreshCatalog(context.Context) (int, error) { return s.refresh, s.err }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func makeEvent(method, path, body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func newTestHandler(t *testing.T, svc Services) *Handler {
	t.Helper()
	h, err := NewHandler(svc)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(Services{})
	require.Error(t, err)
}

func TestHandle_ChatbotHappyPath(t *testing.T) {
	query := "Latte"
	chat := &stubChat{out: usecase.ChatOutput{
		Suggestion:       "A **Latte** would be lovely.",
		PreviousMessages: []domain.Turn{{Sender: domain.SenderUser, Text: "I'm tired"}},
		Timestamp:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		SearchQuery:      &query,
	}}
	h := newTestHandler(t, Services{Chat: chat})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/chatbot", `{"message":"I'm tired","sessionId":"s-1","isNewConversation":true}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.ChatInput{Message: "I'm tired", SessionID: "s-1", NewConversation: true}, chat.in)

	out := parseBody[chatResponse](t, resp.Body)
	require.Equal(t, "A **Latte** would be lovely.", out.Suggestion)
	require.Len(t, out.PreviousMessages, 1)
	require.NotNil(t, out.SearchQuery)
	require.Equal(t, "Latte", *out.SearchQuery)
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
}

func TestHandle_ChatbotOmitsAbsentOptionalFields(t *testing.T) {
	h := newTestHandler(t, Services{Chat: &stubChat{out: usecase.ChatOutput{Suggestion: "hi"}}})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/chatbot", `{"message":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw := parseBody[map[string]any](t, resp.Body)
	require.NotContains(t, raw, "searchQuery")
	require.NotContains(t, raw, "detailedInfo")
	require.Equal(t, []any{}, raw["previousMessages"])
	require.Equal(t, false, raw["isList"])
}

func TestHandle_InvalidBody(t *testing.T) {
	h := newTestHandler(t, Services{Chat: &stubChat{}})

	resp, err := h.Handle(context.Background(), makeEvent(http.MethodPost, "/api/chatbot", `not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := parseBody[errorResponse](t, resp.Body)
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
	require.Equal(t, "invalid_json", out.Detail)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: usecase.NewError(usecase.ErrorInvalidInput, "bad", nil), status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput)},
		{name: "not found", err: usecase.NewError(usecase.ErrorNotFound, "conversation_not_found", nil), status: http.StatusNotFound, code: string(usecase.ErrorNotFound)},
		{name: "conflict", err: usecase.NewError(usecase.ErrorConflict, "email_exists", nil), status: http.StatusConflict, code: string(usecase.ErrorConflict)},
		{name: "unauthorized", err: usecase.NewError(usecase.ErrorUnauthorized, "invalid_credentials", nil), status: http.StatusUnauthorized, code: string(usecase.ErrorUnauthorized)},
		{name: "upstream", err: usecase.NewError(usecase.ErrorUpstream, "catalog_refresh_error", nil), status: http.StatusBadGateway, code: string(usecase.ErrorUpstream)},
		{name: "internal", err: usecase.NewError(usecase.ErrorInternal, "dynamodb_error", nil), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, Services{Chat: &stubChat{err: tc.err}})

			resp, err := h.Handle(context.Background(), makeEvent(http.MethodGet, "/api/conversation/s-1", ""))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
		})
	}
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h := newTestHandler(t, Services{Chat: &stubChat{}})

	event := makeEvent(http.MethodPost, "/api/chatbot", `{"message":"hi"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])
}

func TestHandle_Base64Body(t *testing.T) {
	chat := &stubChat{}
	h := newTestHandler(t, Services{Chat: chat})

	event := makeEvent(http.MethodPost, "/api/chatbot", "eyJtZXNzYWdlIjoiaGkifQ==")
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hi", chat.in.Message)
}

func TestChatReadEndpoints(t *testing.T) {
	chat := &stubChat{
		turns: []domain.Turn{{Sender: domain.SenderBot, Text: "Hello!"}},
		entries: []domain.CatalogEntry{
			{Name: "Latte", Description: "Milky", Category: "Hot", InStock: true},
			{Name: "Cold Brew", Description: "Slow", Category: "Cold", InStock: false},
		},
		refresh: 2,
	}
	srv := httptest.NewServer(newTestHandler(t, Services{Chat: chat}))
	defer srv.Close()

	conv := getJSON[conversationResponse](t, srv.URL+"/api/conversation/s-1", http.StatusOK)
	require.Equal(t, chat.turns[0].Text, conv.Conversation[0].Text)

	list := getJSON[coffeeListResponse](t, srv.URL+"/api/coffee-list", http.StatusOK)
	require.Equal(t, []string{"Latte", "Cold Brew"}, list.Coffees)
	require.Equal(t, 2, list.Count)

	info := getJSON[coffeeInfoResponse](t, srv.URL+"/api/coffee-info/cold%20brew", http.StatusOK)
	require.Equal(t, "Cold Brew", info.Name)
	require.False(t, info.InStock)

	missing := getJSON[errorResponse](t, srv.URL+"/api/coffee-info/tea", http.StatusNotFound)
	require.Equal(t, "coffee_not_found", missing.Detail)

	resp, err := http.Post(srv.URL+"/api/admin/catalog/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceEndpoints(t *testing.T) {
	cases := []struct {
		name      string
		pinger    HealthChecker
		connected bool
	}{
		{name: "connected", pinger: stubPinger{}, connected: true},
		{name: "unreachable", pinger: stubPinger{err: errors.New("timeout")}, connected: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(newTestHandler(t, Services{Chat: &stubChat{}, Health: tc.pinger}))
			defer srv.Close()

			root := getJSON[messageResponse](t, srv.URL+"/", http.StatusOK)
			require.Equal(t, "Coffee Shop Server Running", root.Message)

			health := getJSON[healthResponse](t, srv.URL+"/api/health", http.StatusOK)
			require.Equal(t, tc.connected, health.Connected)
			require.Equal(t, "dynamodb", health.Database)
		})
	}
}

func TestUnmountedRoutesAreNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t, Services{Chat: &stubChat{}}))
	defer srv.Close()

	out := getJSON[errorResponse](t, srv.URL+"/api/products", http.StatusNotFound)
	require.Equal(t, string(usecase.ErrorNotFound), out.Error)
}

func TestCORSPreflight(t *testing.T) {
	h, err := NewHandler(Services{Chat: &stubChat{}}, WithAllowedOrigins("https://shop.example"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/chatbot", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func getJSON[T any](t *testing.T, url string, status int) T {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
