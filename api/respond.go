package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("error", err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

// writeStoreError reports a failed backend write.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	logger.Error("store write failed", slog.String("op", op), slog.Any("error", err))
	http.Error(w, "remote write failed", http.StatusBadGateway)
}
