package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"barcaja/backend/internal/domain"
	"barcaja/backend/internal/service"
	"barcaja/backend/internal/store"
)

type API struct {
	service       *service.Service
	allowedOrigin string
	defaultVenue  string
}

func New(svc *service.Service, allowedOrigin string, defaultVenue string) *API {
	return &API{
		service:       svc,
		allowedOrigin: allowedOrigin,
		defaultVenue:  defaultVenue,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/venues", a.handleVenues)
	mux.HandleFunc("/api/v1/products", a.handleProducts)
	mux.HandleFunc("/api/v1/products/", a.handleProductActions)
	mux.HandleFunc("/api/v1/softdrinks", a.handleSoftDrinks)
	mux.HandleFunc("/api/v1/softdrinks/", a.handleSoftDrinkActions)
	mux.HandleFunc("/api/v1/workers", a.handleWorkers)
	mux.HandleFunc("/api/v1/workers/", a.handleWorkerActions)
	mux.HandleFunc("/api/v1/shifts", a.handleShifts)
	mux.HandleFunc("/api/v1/shifts/open", a.handleShiftOpen)
	mux.HandleFunc("/api/v1/shifts/", a.handleShiftActions)
	mux.HandleFunc("/api/v1/restocks", a.handleRestocks)
	mux.HandleFunc("/api/v1/reports", a.handleReports)
	mux.HandleFunc("/api/v1/reports/export", a.handleReportExport)

	return a.withMiddleware(mux)
}

func (a *API) venueFrom(r *http.Request) string {
	venue := strings.TrimSpace(r.URL.Query().Get("venue"))
	if venue == "" {
		return a.defaultVenue
	}
	return venue
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleVenues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	venues, err := a.service.ListVenues(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"venues": venues})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context(), a.venueFrom(r))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.AddProduct(r.Context(), a.venueFrom(r), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/products/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	if strings.HasSuffix(tail, "/restock") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		productID := strings.Trim(strings.TrimSuffix(tail, "/restock"), "/")
		if productID == "" {
			writeError(w, http.StatusBadRequest, errors.New("product id required"))
			return
		}

		var req domain.RestockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.Restock(r.Context(), a.venueFrom(r), productID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
		return
	}

	if r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := a.service.UpdateProduct(r.Context(), a.venueFrom(r), tail, req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": updated})
}

func (a *API) handleSoftDrinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		drinks, err := a.service.ListSoftDrinks(r.Context(), a.venueFrom(r))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"soft_drinks": drinks})
	case http.MethodPost:
		var req domain.SoftDrinkCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		drink, err := a.service.AddSoftDrink(r.Context(), a.venueFrom(r), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"soft_drink": drink})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSoftDrinkActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/softdrinks/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("soft drink id required"))
		return
	}

	if strings.HasSuffix(tail, "/restock") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		drinkID := strings.Trim(strings.TrimSuffix(tail, "/restock"), "/")
		if drinkID == "" {
			writeError(w, http.StatusBadRequest, errors.New("soft drink id required"))
			return
		}

		var req domain.RestockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		drink, err := a.service.RestockSoftDrink(r.Context(), a.venueFrom(r), drinkID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"soft_drink": drink})
		return
	}

	if strings.HasSuffix(tail, "/consume") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		drinkID := strings.Trim(strings.TrimSuffix(tail, "/consume"), "/")
		if drinkID == "" {
			writeError(w, http.StatusBadRequest, errors.New("soft drink id required"))
			return
		}

		var req domain.SoftDrinkConsumeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		drink, err := a.service.ConsumeSoftDrink(r.Context(), a.venueFrom(r), drinkID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"soft_drink": drink})
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.SoftDrinkUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		drink, err := a.service.UpdateSoftDrink(r.Context(), a.venueFrom(r), tail, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"soft_drink": drink})
	case http.MethodDelete:
		if err := a.service.DeleteSoftDrink(r.Context(), a.venueFrom(r), tail); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleWorkers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		workers, err := a.service.ListWorkers(r.Context(), a.venueFrom(r))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"workers": workers})
	case http.MethodPost:
		var req domain.WorkerCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		worker, err := a.service.AddWorker(r.Context(), a.venueFrom(r), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"worker": worker})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleWorkerActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/workers/"
	workerID := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if workerID == "" {
		writeError(w, http.StatusBadRequest, errors.New("worker id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.WorkerUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		worker, err := a.service.UpdateWorker(r.Context(), a.venueFrom(r), workerID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"worker": worker})
	case http.MethodDelete:
		worker, err := a.service.DeleteWorker(r.Context(), a.venueFrom(r), workerID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		if worker != nil {
			// Worker still referenced by shifts, downgraded to deactivation.
			writeJSON(w, http.StatusOK, map[string]any{"worker": worker, "deleted": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleShifts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	shifts, err := a.service.ListShifts(r.Context(), a.venueFrom(r))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shifts": shifts})
}

func (a *API) handleShiftOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.ShiftOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	shift, err := a.service.OpenShift(r.Context(), a.venueFrom(r), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"shift": shift})
}

func (a *API) handleShiftActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/shifts/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("shift id required"))
		return
	}

	if strings.HasSuffix(tail, "/close") {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		shiftID := strings.Trim(strings.TrimSuffix(tail, "/close"), "/")
		if shiftID == "" {
			writeError(w, http.StatusBadRequest, errors.New("shift id required"))
			return
		}

		var req domain.ShiftCloseRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := a.service.CloseShift(r.Context(), a.venueFrom(r), shiftID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if strings.HasSuffix(tail, "/draft") {
		shiftID := strings.Trim(strings.TrimSuffix(tail, "/draft"), "/")
		if shiftID == "" {
			writeError(w, http.StatusBadRequest, errors.New("shift id required"))
			return
		}

		switch r.Method {
		case http.MethodGet:
			d, err := a.service.ResumeDraft(r.Context(), a.venueFrom(r), shiftID)
			if err != nil {
				writeError(w, statusForError(err), err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"draft": d})
		case http.MethodPut:
			var req domain.DraftSaveRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			d, err := a.service.SaveDraft(r.Context(), a.venueFrom(r), shiftID, req)
			if err != nil {
				writeError(w, statusForError(err), err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"draft": d})
		default:
			writeMethodNotAllowed(w)
		}
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	shift, err := a.service.GetShift(r.Context(), a.venueFrom(r), tail)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shift": shift})
}

func (a *API) handleRestocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 500)
	records, err := a.service.ListRestocks(r.Context(), a.venueFrom(r), limit)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restocks": records})
}

func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	period := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))
	summary, err := a.service.Reports(r.Context(), a.venueFrom(r), period)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	period := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))
	payload, fileName, err := a.service.ExportReports(r.Context(), a.venueFrom(r), period)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(payload)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx responses return a generic message so internal details never
	// reach the client; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
