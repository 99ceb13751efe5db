package handler

import (
	"net/http"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/model"
)

type LedgerHandler struct {
	bank *bank.Bank
}

func NewLedgerHandler(b *bank.Bank) *LedgerHandler {
	return &LedgerHandler{bank: b}
}

type entryRequest struct {
	ActivityID  string `json:"activity_id"`
	Minutes     int    `json:"minutes"`
	Description string `json:"description"`
	Confirm     bool   `json:"confirm"`
}

// Balance returns the balance with the gauge breakdown.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Gauge())
}

func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.History())
}

func (h *LedgerHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ActivityID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "activity_id is required"})
		return
	}
	h.respond(w, func() (bank.Receipt, error) {
		return h.bank.Earn(req.ActivityID, req.Minutes, req.Description)
	})
}

func (h *LedgerHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, func() (bank.Receipt, error) {
		return h.bank.Play(req.Minutes, req.Description)
	})
}

// Cash redeems minutes for pocket money. Without "confirm": true it answers
// 409 with the amount in the prompt.
func (h *LedgerHandler) Cash(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, func() (bank.Receipt, error) {
		return h.bank.RedeemCash(req.Minutes, req.Confirm)
	})
}

func (h *LedgerHandler) Penalty(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, func() (bank.Receipt, error) {
		return h.bank.Penalize(req.ActivityID, req.Minutes, req.Description)
	})
}

func (h *LedgerHandler) respond(w http.ResponseWriter, op func() (bank.Receipt, error)) {
	receipt, err := op()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// Clear wipes balance and history; requires ?confirm=true.
func (h *LedgerHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.Clear(confirmed(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.LedgerData{Balance: 0, Transactions: []model.Transaction{}})
}
