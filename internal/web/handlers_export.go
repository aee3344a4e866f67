package web

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/resale/internal/logging"
)

// handleExportData downloads a collection as CSV in its stored column order.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "collection")
	info, recs, err := s.service.ExportCollection(r.Context(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", key, s.now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	cw := csv.NewWriter(w)
	if err := cw.Write(info.Columns); err != nil {
		return
	}
	row := make([]string, len(info.Columns))
	for _, rec := range recs {
		for i, col := range info.Columns {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			// Headers are sent; all that is left is to log.
			logging.FromContext(r.Context()).Error("export write failed", "collection", key, "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("export flush failed", "collection", key, "error", err)
	}
}
