package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API's error envelope
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
