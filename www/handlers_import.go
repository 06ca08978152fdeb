package www

import (
	"encoding/json"
	"net/http"

	"prodpulse/store"
)

func (h *Handlers) apiRunImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		h.jsonError(w, "importer not configured", http.StatusServiceUnavailable)
		return
	}
	report, err := h.importer.Run(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, report)
}

// apiStageRawRow appends one row to the intake buffer. Bulk loads go
// straight into raw_manufacturing_data out of band; this endpoint covers
// manual corrections and backfills.
func (h *Handlers) apiStageRawRow(w http.ResponseWriter, r *http.Request) {
	var row store.RawRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		h.jsonError(w, "invalid row payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.InsertRawRow(&row); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	count, err := h.db.CountRawRows()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{"staged": true, "raw_rows": count})
}
