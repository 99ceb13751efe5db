package handler

import (
	"net/http"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/model"
)

type SettingsHandler struct {
	bank *bank.Bank
}

func NewSettingsHandler(b *bank.Bank) *SettingsHandler {
	return &SettingsHandler{bank: b}
}

type settingsResponse struct {
	model.Settings
	MaxMinutes     int `json:"max_minutes"`
	MaxPlayMinutes int `json:"max_play_minutes"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response(h.bank.Settings()))
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if !decode(w, r, &req) {
		return
	}
	st, err := h.bank.SetAgeGroup(req.AgeGroup)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.response(st))
}

func (h *SettingsHandler) response(st model.Settings) settingsResponse {
	l := h.bank.Limits()
	return settingsResponse{Settings: st, MaxMinutes: l.Ceiling(), MaxPlayMinutes: l.MaxPlayMinutes()}
}
