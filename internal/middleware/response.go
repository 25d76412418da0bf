package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"error": msg})
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
