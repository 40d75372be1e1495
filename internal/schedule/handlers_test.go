package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
)

func newTestRouter(t *testing.T, store RecordStore, extractor Extractor) (*chi.Mux, *Loader) {
	t.Helper()
	cols := testCollections()
	loader := NewLoader(store, cols)
	handler := NewHandler(store, loader, cols, extractor)
	router := chi.NewRouter()
	router.Route("/api/v1", handler.RegisterRoutes)
	return router, loader
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestListEndpointNormalizesRecords(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	store.mu.Lock()
	store.data[cols.Companies][0].Fields["stray_field"] = "x"
	store.mu.Unlock()

	router, _ := newTestRouter(t, store, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/companies/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data []livingapps.Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one company, got %d", len(envelope.Data))
	}
	if _, ok := envelope.Data[0].Fields["stray_field"]; ok {
		t.Fatal("stray field leaked through the boundary")
	}
	if envelope.Data[0].Fields[FieldCompanyName] != "Acme GmbH" {
		t.Fatalf("unexpected fields: %+v", envelope.Data[0].Fields)
	}
}

func TestCreateFiltersUnknownFields(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	router, _ := newTestRouter(t, store, nil)

	payload := bytes.NewBufferString(`{"fields": {"unternehmen_name": "Globex", "evil": "x"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/", payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	store.mu.Lock()
	created := store.created[cols.Companies]
	store.mu.Unlock()
	if len(created) != 1 {
		t.Fatalf("expected one created record, got %d", len(created))
	}
	if _, ok := created[0]["evil"]; ok {
		t.Fatal("undeclared field reached the store")
	}
	if created[0][FieldCompanyName] != "Globex" {
		t.Fatalf("unexpected created fields: %+v", created[0])
	}
}

func TestPlanEndpointReturnsEnrichedWeek(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	router, _ := newTestRouter(t, store, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plan?week=2026-09-01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)

	week, ok := data["week"].(map[string]any)
	if !ok {
		t.Fatalf("missing week plan in response: %v", data)
	}
	if week["weekStart"] != "2026-08-31" {
		t.Fatalf("unexpected week start %v", week["weekStart"])
	}

	assignments, ok := data["assignments"].([]any)
	if !ok || len(assignments) != 1 {
		t.Fatalf("unexpected assignments payload: %v", data["assignments"])
	}
	first := assignments[0].(map[string]any)
	if first["zuweisung_mitarbeiterName"] != "Anna" {
		t.Fatalf("assignment not enriched: %v", first)
	}
}

func TestPlanRefreshSurfacesStoreErrors(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	store.mu.Lock()
	store.failing[cols.Assignments] = errors.New("store melted")
	store.mu.Unlock()

	router, _ := newTestRouter(t, store, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plan/refresh", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("store melted")) {
		t.Fatalf("error message not surfaced: %s", rec.Body.String())
	}
}

type fakeExtractor struct {
	result map[string]*string
	err    error
}

func (f *fakeExtractor) ExtractFields(context.Context, []byte, string, string) (map[string]*string, error) {
	return f.result, f.err
}

func scanRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if fields != nil {
		encoded, err := json.Marshal(fields)
		if err != nil {
			t.Fatalf("encode fields: %v", err)
		}
		if err := writer.WriteField("fields", string(encoded)); err != nil {
			t.Fatalf("write fields part: %v", err)
		}
	}
	part, err := writer.CreateFormFile("photo", "schichtplan.jpg")
	if err != nil {
		t.Fatalf("create photo part: %v", err)
	}
	if _, err := part.Write([]byte("not-really-a-jpeg")); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/scan", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestScanMergesExtractedFields(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	extractor := &fakeExtractor{result: map[string]*string{
		FieldAssignmentNote:    strptr("Springer"),
		FieldAssignmentCompany: strptr("Acme"),
	}}
	router, _ := newTestRouter(t, store, extractor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, scanRequest(t, map[string]string{FieldAssignmentNote: "belassen"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data[FieldAssignmentNote] != "belassen" {
		t.Fatalf("user-entered note overwritten: %q", envelope.Data[FieldAssignmentNote])
	}
	want := livingapps.RecordURL(cols.BaseURL, cols.Companies, "bbbbbbbbbbbbbbbbbbbbbbbb")
	if envelope.Data[FieldAssignmentCompany] != want {
		t.Fatalf("company reference not resolved: %q", envelope.Data[FieldAssignmentCompany])
	}
}

func TestScanFailureReturnsFormUnchanged(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	extractor := &fakeExtractor{err: errors.New("model unavailable")}
	router, _ := newTestRouter(t, store, extractor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, scanRequest(t, map[string]string{FieldAssignmentNote: "manuell"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("scan failure must not block the form, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data[FieldAssignmentNote] != "manuell" {
		t.Fatalf("form state changed on failure: %+v", envelope.Data)
	}
}

func TestScanWithoutExtractorIsUnavailable(t *testing.T) {
	cols := testCollections()
	store := newFakeStore()
	seedStore(store, cols)
	router, _ := newTestRouter(t, store, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, scanRequest(t, nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
