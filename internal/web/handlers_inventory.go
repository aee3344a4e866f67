package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.ListInventory(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateInventory(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	item, err := s.service.CreateInventoryItem(r.Context(), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	item, err := s.service.UpdateInventoryItem(r.Context(), chi.URLParam(r, "itemName"), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.DeleteInventoryItem(r.Context(), chi.URLParam(r, "itemName"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item deleted",
		"item":    item,
	})
}
