package handler

import (
	"net/http"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/catalog"
	"github.com/tomwugdgz/qqtime/internal/model"
)

type CatalogHandler struct {
	bank *bank.Bank
}

func NewCatalogHandler(b *bank.Bank) *CatalogHandler {
	return &CatalogHandler{bank: b}
}

type optionRequest struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Category               model.Category `json:"category"`
	DefaultDurationMinutes int            `json:"defaultDurationMinutes"`
	ExchangeRatio          *float64       `json:"exchangeRatio"`
	Description            string         `json:"description"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Catalog())
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r.PathValue("kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be earn or penalty"})
		return
	}
	var req optionRequest
	if !decode(w, r, &req) {
		return
	}

	opt := catalog.NewOption(kind, req.Name, req.Category, req.DefaultDurationMinutes)
	if req.ID != "" {
		opt.ID = req.ID
	}
	if req.ExchangeRatio != nil {
		opt.ExchangeRatio = *req.ExchangeRatio
	}
	if req.Description != "" {
		opt.Description = req.Description
	}

	added, err := h.bank.AddOption(kind, opt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// Delete removes an option; requires ?confirm=true.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r.PathValue("kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be earn or penalty"})
		return
	}
	if err := h.bank.DeleteOption(kind, r.PathValue("id"), confirmed(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
