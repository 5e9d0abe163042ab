package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/humanizer/internal/humanizer"
)

// ServiceName is reported by the root and status endpoints.
const ServiceName = "AI Humanizer API"

const (
	messageNoJSON       = "No JSON data provided"
	messageBodyTooLarge = "Request body too large"
)

// Humanizer is the part of humanizer.Service the HTTP handlers depend on.
type Humanizer interface {
	Humanize(ctx context.Context, text string) (humanizer.Result, error)
	CacheSize() int
}

func rootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rootResponse{
			Status:  "online",
			Service: ServiceName,
			Version: version,
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func statusHandler(service Humanizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Status:    "operational",
			CacheSize: service.CacheSize(),
			Service:   ServiceName,
		})
	}
}

func humanizeHandler(service Humanizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, http.StatusRequestEntityTooLarge, messageBodyTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, messageNoJSON)
			return
		}

		text, message := decodeText(body)
		if message != "" {
			writeError(w, http.StatusBadRequest, message)
			return
		}

		result, err := service.Humanize(r.Context(), text)
		if err != nil {
			var validationErr *humanizer.ValidationError
			if errors.As(err, &validationErr) {
				writeError(w, http.StatusBadRequest, validationErr.Message)
				return
			}
			slog.Default().Error("humanize failed",
				"request_id", RequestIDFromContext(r.Context()),
				"error", err,
			)
			elapsed := seconds(result.Elapsed)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:          err.Error(),
				ProcessingTime: &elapsed,
			})
			return
		}

		if result.Hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		writeJSON(w, http.StatusOK, humanizeResponse{
			Success:         true,
			HumanizedText:   result.Text,
			ProcessingTime:  seconds(result.Elapsed),
			OriginalLength:  result.OriginalLength,
			HumanizedLength: result.HumanizedLength,
			Cached:          result.Cached,
		})
	}
}

// decodeText extracts the "text" field from a JSON object body. It returns the
// client-facing message when the body cannot be used.
func decodeText(body []byte) (string, string) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return "", messageNoJSON
	}
	text, ok := payload["text"].(string)
	if !ok {
		return "", humanizer.MessageNoText
	}
	return text, ""
}
