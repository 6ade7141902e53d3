// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse mirrors the {"detail": ...} body clients of the API expect
type errorResponse struct {
	Detail string `json:"detail"`
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Detail: message})
}
