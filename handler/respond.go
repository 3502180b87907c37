package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"coffee-shop/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response body")
	}
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorConflict:
		return http.StatusConflict
	case usecase.ErrorUnauthorized:
		return http.StatusUnauthorized
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := usecase.CodeOf(err)
	status := statusFor(code)
	resp := errorResponse{Error: string(code)}

	var ue *usecase.Error
	if errors.As(err, &ue) {
		resp.Detail = ue.Reason
	}

	logger := loggerFrom(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", string(code)).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("code", string(code)).Msg("request rejected")
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from the body. Any failure is an
// INVALID_INPUT error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return usecase.NewError(usecase.ErrorInvalidInput, "empty_body", err)
		}
		return usecase.NewError(usecase.ErrorInvalidInput, "invalid_json", err)
	}
	return nil
}

func loggerFrom(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}

// correlationID echoes the caller's X-Correlation-Id, or a fresh one, and
// attaches a request-scoped logger carrying it.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)

		logger := log.With().
			Str("correlation_id", id).
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			loggerFrom(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
