package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"

	"coffee-shop/internal/usecase"
)

// Handle serves an API Gateway proxy event through the same router as the
// HTTP server. Failures are reported in the response, never as an error.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := proxyRequest(ctx, event)
	if err != nil {
		w := newProxyWriter()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Detail: "invalid_request"})
		return w.response(), nil
	}
	w := newProxyWriter()
	h.ServeHTTP(w, req)
	return w.response(), nil
}

func proxyRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	path := event.Path
	if path == "" {
		path = "/"
	}
	u := url.URL{Path: path}

	q := url.Values{}
	for k, vs := range event.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if len(q) == 0 {
		for k, v := range event.QueryStringParameters {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	req, err := http.NewRequestWithContext(ctx, event.HTTPMethod, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range event.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range event.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip
	}
	return req, nil
}

// proxyWriter buffers a response for conversion into a proxy response.
type proxyWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newProxyWriter() *proxyWriter {
	return &proxyWriter{header: http.Header{}}
}

func (w *proxyWriter) Header() http.Header { return w.header }

func (w *proxyWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *proxyWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *proxyWriter) response() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(w.header))
	for k, vs := range w.header {
		headers[k] = strings.Join(vs, ",")
	}
	resp := events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           headers,
		MultiValueHeaders: map[string][]string(w.header.Clone()),
	}
	if utf8.Valid(w.body.Bytes()) {
		resp.Body = w.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(w.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}
