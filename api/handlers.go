/*
handlers.go - HTTP API handlers for the contribution scheduler

PURPOSE:
  Exposes the household configuration and the cash-flow projection via
  REST. Handles HTTP request/response, JSON serialization, and delegates
  to domain logic.

ENDPOINTS:
  Bills:
    GET    /api/bills              List all bills
    POST   /api/bills              Create or update a bill
    GET    /api/bills/{name}       Get one bill
    DELETE /api/bills/{name}       Delete a bill

  Payees:
    GET    /api/payees             List all payees
    POST   /api/payees             Create or update a payee
    GET    /api/payees/{name}      Get one payee
    DELETE /api/payees/{name}     Delete a payee

  Options:
    GET    /api/options            Get run configuration
    PUT    /api/options            Replace run configuration

  Shares:
    GET    /api/shares             Resolved cost split per bill + validation

  Schedule:
    GET    /api/schedule           Projection (query: month, year, months)
    GET    /api/schedule/export    Same projection as a CSV download

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/cashflow-engine/export"
	"github.com/warp/cashflow-engine/schedule"
	"github.com/warp/cashflow-engine/store"
	"github.com/warp/cashflow-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(st *sqlite.Store) *Handler {
	return &Handler{Store: st}
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Store.ListBills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}
	if bills == nil {
		bills = []store.BillRecord{}
	}
	writeJSON(w, http.StatusOK, bills)
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	bill, err := h.Store.GetBill(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// SaveBill creates or updates a bill by name.
func (h *Handler) SaveBill(w http.ResponseWriter, r *http.Request) {
	var bill store.BillRecord
	if err := json.NewDecoder(r.Body).Decode(&bill); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if bill.Name == "" {
		writeError(w, http.StatusBadRequest, "Bill name is required", nil)
		return
	}
	if _, err := bill.ToDomain(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bill", err)
		return
	}

	if err := h.Store.SaveBill(r.Context(), bill); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save bill", err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.Store.DeleteBill(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYEE HANDLERS
// =============================================================================

// ListPayees returns all payees.
func (h *Handler) ListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := h.Store.ListPayees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payees", err)
		return
	}
	if payees == nil {
		payees = []store.PayeeRecord{}
	}
	writeJSON(w, http.StatusOK, payees)
}

// GetPayee returns a single payee.
func (h *Handler) GetPayee(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	payee, err := h.Store.GetPayee(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Payee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payee", err)
		return
	}
	writeJSON(w, http.StatusOK, payee)
}

// SavePayee creates or updates a payee by name.
func (h *Handler) SavePayee(w http.ResponseWriter, r *http.Request) {
	var payee store.PayeeRecord
	if err := json.NewDecoder(r.Body).Decode(&payee); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if payee.Name == "" {
		writeError(w, http.StatusBadRequest, "Payee name is required", nil)
		return
	}
	if _, err := payee.ToDomain(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payee", err)
		return
	}

	if err := h.Store.SavePayee(r.Context(), payee); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payee", err)
		return
	}
	writeJSON(w, http.StatusCreated, payee)
}

// DeletePayee removes a payee.
func (h *Handler) DeletePayee(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := h.Store.DeletePayee(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Payee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete payee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OPTIONS HANDLERS
// =============================================================================

// GetOptions returns the run configuration.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Store.GetOptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get options", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// SaveOptions replaces the run configuration.
func (h *Handler) SaveOptions(w http.ResponseWriter, r *http.Request) {
	var opts store.OptionsRecord
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if opts.CutoffDay < 1 || opts.CutoffDay > 31 {
		writeError(w, http.StatusBadRequest, "cutoff_day must be between 1 and 31", nil)
		return
	}

	if err := h.Store.SaveOptions(r.Context(), opts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save options", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// =============================================================================
// SHARE HANDLERS
// =============================================================================

// GetShares reports every bill's resolved cost split and validation state.
func (h *Handler) GetShares(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load household", err)
		return
	}

	resp := SharesResponse{Valid: true, Bills: []BillSharesDTO{}}
	for _, bill := range snap.Bills {
		dto := BillSharesDTO{Bill: bill.Name, Valid: true, Shares: map[string]float64{}}
		for name, pct := range bill.PayeeShares(snap.Payees) {
			dto.Shares[name] = pct.InexactFloat64()
		}
		if err := bill.ValidateShares(snap.Payees); err != nil {
			dto.Valid = false
			dto.Error = err.Error()
			resp.Valid = false
		}
		resp.Bills = append(resp.Bills, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule runs the projection and returns the full result.
// Query parameters: month, year (default: current), months (default: the
// configured projection window).
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runProjection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(result))
}

// ExportSchedule runs the projection and streams it as CSV.
func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runProjection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="schedule-%d-%02d.csv"`, result.StartYear, result.StartMonth))
	if err := export.WriteSchedule(w, result); err != nil {
		// Headers are already sent; nothing useful left to report.
		return
	}
}

func (h *Handler) runProjection(w http.ResponseWriter, r *http.Request) (schedule.PaymentScheduleResult, bool) {
	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load household", err)
		return schedule.PaymentScheduleResult{}, false
	}

	now := time.Now()
	month, ok := queryInt(w, r, "month", int(now.Month()), 1, 12)
	if !ok {
		return schedule.PaymentScheduleResult{}, false
	}
	year, ok := queryInt(w, r, "year", now.Year(), 1970, 9999)
	if !ok {
		return schedule.PaymentScheduleResult{}, false
	}
	months, ok := queryInt(w, r, "months", snap.Options.ProjectionMonths, 1, 120)
	if !ok {
		return schedule.PaymentScheduleResult{}, false
	}

	return schedule.NewScheduler(snap).ProportionalContributions(month, year, months), true
}

// queryInt parses an optional integer query parameter, writing a 400 and
// returning false when it is malformed or out of range.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s: must be an integer between %d and %d", name, min, max), err)
		return 0, false
	}
	return v, true
}

func toScheduleResponse(result schedule.PaymentScheduleResult) ScheduleResponse {
	resp := ScheduleResponse{
		StartMonth:    result.StartMonth,
		StartYear:     result.StartYear,
		MonthsAhead:   result.MonthsAhead,
		ScheduleItems: []ScheduleItemDTO{},
		MonthlyTotals: []MonthlyTotalDTO{},
	}

	for _, item := range result.ScheduleItems {
		resp.ScheduleItems = append(resp.ScheduleItems, ScheduleItemDTO{
			PayeeName:              item.PayeeName,
			ScheduleDescription:    item.ScheduleDescription,
			IncomeAmount:           item.IncomeAmount.InexactFloat64(),
			RequiredContribution:   item.RequiredContribution.InexactFloat64(),
			ContributionPercentage: item.ContributionPercent.InexactFloat64(),
			PaymentDate:            item.PaymentDate.String(),
			IsBeforeCutoff:         item.IsBeforeCutoff,
		})
	}
	for _, monthly := range result.MonthlyBillTotals {
		dto := MonthlyTotalDTO{
			Month:      monthly.Month,
			Year:       monthly.Year,
			TotalBills: monthly.TotalBills.InexactFloat64(),
		}
		for _, due := range monthly.BillsDue {
			dto.BillsDue = append(dto.BillsDue, BillDueDTO{Name: due.Name, Amount: due.Amount.InexactFloat64()})
		}
		resp.MonthlyTotals = append(resp.MonthlyTotals, dto)
	}
	for _, wa := range result.WeekendAdjustments {
		resp.WeekendAdjustments = append(resp.WeekendAdjustments, WeekendAdjustmentDTO{
			PayeeName:           wa.PayeeName,
			ScheduleDescription: wa.ScheduleDescription,
			OriginalDate:        wa.OriginalDate.String(),
			AdjustedDate:        wa.AdjustedDate.String(),
			IncomeAmount:        wa.IncomeAmount.InexactFloat64(),
		})
	}
	return resp
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
