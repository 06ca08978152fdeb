package www

import (
	"net/http"
	"strconv"
)

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"driver":    h.db.Driver(),
		"messaging": h.msg != nil && h.msg.IsConnected(),
	})
}

func (h *Handlers) apiDashboard(w http.ResponseWriter, r *http.Request) {
	customer := r.URL.Query().Get("customer")
	limit := queryLimit(r, 500)
	rows, err := h.db.DashboardRows(customer, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiKPI(w http.ResponseWriter, r *http.Request) {
	if k, ok := h.cache.GetKPI(r.Context()); ok {
		h.jsonOK(w, k)
		return
	}
	k, err := h.db.KPISnapshot()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.cache.SetKPI(r.Context(), k)
	h.jsonOK(w, k)
}

func (h *Handlers) apiQuality(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QualityRows(queryLimit(r, 500))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiQualityGrades(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.QualityGradeCounts()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, counts)
}

func (h *Handlers) apiDailyTrend(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.DailySummaries()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.MonthlySummaries()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiDepartmentSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.DepartmentSummaries()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiCustomerSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.CustomerSummaries()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiMachineUtilization(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.MachineUtilizations()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

// queryLimit reads a ?limit= parameter, falling back to def. The value
// feeds a LIMIT clause, where 0 would return nothing, so zero, negative
// and garbage values all fall back to def.
func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
