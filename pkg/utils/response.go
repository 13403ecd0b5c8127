package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// Failure kinds carried in the response envelope.
const (
	KindBadRequest   = "bad_request"
	KindUnauthorized = "unauthorized"
	KindNotFound     = "not_found"
	KindProvider     = "provider_failure"
	KindTimeout      = "timeout"
	KindPersistence  = "persistence_failure"
	KindInternal     = "internal"
)

// Envelope is the uniform response body for the chat API. Every outcome,
// success or failure, is serialized through it; handlers never let a raw
// fault reach the transport layer.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON writes payload as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondSuccess writes a success envelope around data.
func RespondSuccess(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, Envelope{Success: true, Data: data})
}

// RespondFailure writes a failure envelope with a machine kind and a
// human-readable message.
func RespondFailure(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, Envelope{Success: false, Kind: kind, Message: message})
}
