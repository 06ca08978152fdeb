package www

import (
	"net/http"
	"strconv"
)

func (h *Handlers) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListCustomers()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListEmployees(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListEmployees()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListItems(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListItems()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListMachines(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListMachines()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListOperations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListOperations()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListDepartments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListDepartments()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListRecords(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListProductionRecords(queryLimit(r, 200))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		h.jsonError(w, "invalid record id", http.StatusBadRequest)
		return
	}
	rec, err := h.db.GetProductionRecord(id)
	if err != nil {
		h.jsonError(w, "record not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, rec)
}

func (h *Handlers) apiListImportRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.db.ListImportRuns(queryLimit(r, 50))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, runs)
}

func (h *Handlers) apiGetImportRun(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		h.jsonError(w, "run_id is required", http.StatusBadRequest)
		return
	}
	run, err := h.db.GetImportRun(runID)
	if err != nil {
		h.jsonError(w, "import run not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, run)
}
