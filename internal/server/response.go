package server

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"
)

type humanizeResponse struct {
	Success         bool    `json:"success"`
	HumanizedText   string  `json:"humanized_text"`
	ProcessingTime  float64 `json:"processing_time"`
	OriginalLength  int     `json:"original_length"`
	HumanizedLength int     `json:"humanized_length"`
	Cached          bool    `json:"cached"`
}

type errorResponse struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error"`
	ProcessingTime *float64 `json:"processing_time,omitempty"`
}

type rootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Status    string `json:"status"`
	CacheSize int    `json:"cache_size"`
	Service   string `json:"service"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// seconds rounds d to hundredths of a second.
func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
