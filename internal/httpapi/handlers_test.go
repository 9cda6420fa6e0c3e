package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/draft"
	"barcaja/backend/internal/metrics"
	"barcaja/backend/internal/service"
	"barcaja/backend/internal/store/memory"
)

func newTestHandler() http.Handler {
	svc := service.New(memory.NewSeeded(), draft.NewMemoryStore(), metrics.New(prometheus.NewRegistry()))
	return New(svc, "http://127.0.0.1:3000", "spezia").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/healthz", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestVenuesList(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/venues", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Venues []domain.Venue `json:"venues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(resp.Venues))
	}
}

func TestProductCreateAndValidation(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{
		Name: "Cerveza Light", Quantity: 40, PurchaseCost: 2200,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", domain.ProductCreateRequest{
		Name: "", PurchaseCost: 2200,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "X", "purchase_cost": 100, "bogus_field": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestUnknownVenueIsNotFound(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products?venue=ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRestockEndpoint(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products/prod-1/restock", domain.RestockRequest{
		Quantity: 12, WorkerName: "Ana",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Product domain.Product `json:"product"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Product.Quantity != 112 {
		t.Fatalf("expected quantity 112, got %d", resp.Product.Quantity)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products/prod-1/restock", domain.RestockRequest{Quantity: -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative restock, got %d", rec.Code)
	}
}

func TestShiftLifecycleOverHTTP(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/shifts/open", domain.ShiftOpenRequest{WorkerID: "worker-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var opened struct {
		Shift domain.Shift `json:"shift"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if opened.Shift.InitialInventory["prod-1"] != 100 {
		t.Fatalf("expected snapshot 100, got %d", opened.Shift.InitialInventory["prod-1"])
	}

	// A second open for the same worker is rejected.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/shifts/open", domain.ShiftOpenRequest{WorkerID: "worker-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate open, got %d", rec.Code)
	}

	// Save and resume a draft mid-count.
	rec = doJSON(t, handler, http.MethodPut, "/api/v1/shifts/"+opened.Shift.ID+"/draft", domain.DraftSaveRequest{
		Sold: map[string]int{"prod-1": 10},
		CashBreakdown: domain.CashBreakdown{
			Bills: map[int64]int{20_000: 2},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 saving draft, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/shifts/"+opened.Shift.ID+"/draft", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 resuming draft, got %d", rec.Code)
	}
	var draftResp struct {
		Draft domain.CountDraft `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &draftResp); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if draftResp.Draft.Sold["prod-1"] != 10 || draftResp.Draft.CashBreakdown.Total != 40_000 {
		t.Fatalf("draft did not round-trip: %+v", draftResp.Draft)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/shifts/"+opened.Shift.ID+"/close", domain.ShiftCloseRequest{
		Sold:      map[string]int{"prod-1": 30},
		Giveaways: map[string]int{"prod-1": 5},
		CashBreakdown: domain.CashBreakdown{
			Bills: map[int64]int{100_000: 1, 20_000: 1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var closed domain.ShiftCloseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &closed); err != nil {
		t.Fatalf("decode close: %v", err)
	}
	if closed.Variance.Kind != domain.VarianceExact {
		t.Fatalf("expected exact variance, got %s", closed.Variance.Kind)
	}
	if closed.Shift.FinalInventory["prod-1"] != 65 {
		t.Fatalf("expected final 65, got %d", closed.Shift.FinalInventory["prod-1"])
	}

	// Closing again fails, and so does saving a draft on a closed shift.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/shifts/"+opened.Shift.ID+"/close", domain.ShiftCloseRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 closing twice, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPut, "/api/v1/shifts/"+opened.Shift.ID+"/draft", domain.DraftSaveRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 drafting a closed shift, got %d", rec.Code)
	}
}

func TestReportsEndpoint(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports?period=today", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports?period=quarter", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rec.Code)
	}
}

func TestReportExportEndpoint(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}

func TestWorkerDeleteDowngrade(t *testing.T) {
	handler := newTestHandler()

	// Reference the worker with a shift, then delete.
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/shifts/open", domain.ShiftOpenRequest{WorkerID: "worker-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/workers/worker-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Deleted bool           `json:"deleted"`
		Worker  *domain.Worker `json:"worker"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Deleted || resp.Worker == nil || resp.Worker.Active {
		t.Fatalf("expected deactivation, got %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "http://127.0.0.1:3000" {
		t.Fatalf("unexpected allow origin %q", origin)
	}
}
