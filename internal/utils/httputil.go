package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// DecodeJSON decodes a request body capped at 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeOptionalJSON is DecodeJSON for endpoints where the body may be omitted.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := DecodeJSON(w, r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// AddServerTiming appends a Server-Timing metric, e.g. "db;dur=12.3".
func AddServerTiming(w http.ResponseWriter, name string, d time.Duration) {
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, float64(d.Microseconds())/1000))
}
