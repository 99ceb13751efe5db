package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tomwugdgz/qqtime/internal/backup"
	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/catalog"
	"github.com/tomwugdgz/qqtime/internal/ledger"
	"github.com/tomwugdgz/qqtime/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps bank, ledger, catalog and backup errors to a status and a
// JSON body. Confirmation requests carry the prompt under "confirm".
func writeError(w http.ResponseWriter, err error) {
	if ce, ok := bank.NeedsConfirmation(err); ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": ce.Error(), "confirm": ce.Prompt})
		return
	}

	switch {
	case errors.Is(err, bank.ErrActivityNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrOverPlayLimit):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidMinutes),
		errors.Is(err, ledger.ErrMinutesOutOfRange),
		errors.Is(err, ledger.ErrActivityRequired),
		errors.Is(err, ledger.ErrInvalidRatio),
		errors.Is(err, ledger.ErrUnknownKind),
		errors.Is(err, catalog.ErrUnknownKind),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrDuplicateID),
		errors.Is(err, catalog.ErrInvalidRatio),
		errors.Is(err, bank.ErrInvalidAgeGroup),
		errors.Is(err, backup.ErrImportParse),
		errors.Is(err, backup.ErrImportFormat),
		errors.Is(err, backup.ErrDecrypt),
		errors.Is(err, backup.ErrPassphrase),
		errors.Is(err, backup.ErrTruncatedFile):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

// parseKind accepts "earn" or "penalty" in any case.
func parseKind(s string) (model.TransactionType, bool) {
	switch model.TransactionType(strings.ToUpper(s)) {
	case model.TransactionEarn:
		return model.TransactionEarn, true
	case model.TransactionPenalty:
		return model.TransactionPenalty, true
	}
	return "", false
}

func confirmed(r *http.Request) bool {
	v := r.URL.Query().Get("confirm")
	return v == "true" || v == "1"
}
