// Package api implements the JSON envelope shared by every HTTP endpoint.
// Successes carry the payload under data; failures carry a machine-readable
// code (invalid_payload, not_found, store_*_failed, load_failed,
// scan_disabled, rate_limited) next to a human-readable message. The
// correlation id assigned by the request-id middleware is echoed in every
// envelope so a response can be matched to its log line.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error is the failure half of the envelope. Code is stable and meant for
// clients to branch on; Message is free-form diagnostic text.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteJSON encodes the envelope before touching the ResponseWriter, so an
// encoding failure still yields a well-formed status instead of a truncated
// body.
func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("encode response envelope", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Warn("write response envelope", "err", err)
	}
}

// Success answers 200 with the payload under data.
func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Created answers 201, used after a record has been stored remotely.
func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Fail answers with the given status and a coded error.
func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}
