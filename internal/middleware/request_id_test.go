package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGenerated(t *testing.T) {
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil))

	if fromCtx == "" {
		t.Fatal("request id missing from context")
	}
	if got := rec.Header().Get(requestIDHeader); got != fromCtx {
		t.Fatalf("response header %q does not match context id %q", got, fromCtx)
	}
}

func TestRequestIDFromClientIsKept(t *testing.T) {
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/scan", nil)
	req.Header.Set(requestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if fromCtx != "client-supplied-id" {
		t.Fatalf("context id = %q, want the client-supplied id", fromCtx)
	}
	if rec.Header().Get(requestIDHeader) != "client-supplied-id" {
		t.Fatal("client id not echoed in the response header")
	}
}
