package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListLedger(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListLedger(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rec, err := s.service.CreateLedgerRecord(r.Context(), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateLedger(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rec, err := s.service.UpdateLedgerRecord(r.Context(), chi.URLParam(r, "transactionID"), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteLedger(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.DeleteLedgerRecord(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Financial record deleted successfully",
		"record":  rec,
	})
}
