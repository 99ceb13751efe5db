package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/report"
)

type ReportHandler struct {
	bank *bank.Bank
}

func NewReportHandler(b *bank.Bank) *ReportHandler {
	return &ReportHandler{bank: b}
}

func (h *ReportHandler) Trend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Trend())
}

// Calendar defaults to the current month when year/month are omitted.
func (h *ReportHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now := h.bank.Now()
	year, month := now.Year(), int(now.Month())

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid year"})
			return
		}
		year = y
	}
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid month"})
			return
		}
		month = m
	}
	writeJSON(w, http.StatusOK, h.bank.Month(year, time.Month(month)))
}

// Day defaults to today when date is omitted.
func (h *ReportHandler) Day(w http.ResponseWriter, r *http.Request) {
	day := report.KeyOf(h.bank.Now())
	if s := r.URL.Query().Get("date"); s != "" {
		k, err := report.ParseDay(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = k
	}
	writeJSON(w, http.StatusOK, h.bank.Day(day))
}
