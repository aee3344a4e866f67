package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.service.ListOrders(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	order, err := s.service.CreateOrder(r.Context(), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleEditOrder(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeRecord(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	order, err := s.service.EditOrder(r.Context(), chi.URLParam(r, "orderID"), payload)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	archived, err := s.service.DeleteOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order deleted and archived successfully",
		"order":   archived,
	})
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	archived, err := s.service.ListArchive(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archived)
}

func (s *Server) handlePurgeArchive(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.PurgeArchive(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All deleted orders permanently removed",
		"purged":  n,
	})
}

func (s *Server) handleRecoverOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.service.RecoverOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Order recovered successfully",
		"recovered_order": order,
	})
}

func (s *Server) handlePermanentlyDeleteOrder(w http.ResponseWriter, r *http.Request) {
	removed, err := s.service.PermanentlyDeleteOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order permanently deleted",
		"order":   removed,
	})
}
