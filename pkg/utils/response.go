package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// RespondSuccess wraps data in the standard success envelope
func RespondSuccess(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
