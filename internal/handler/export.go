package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tomwugdgz/qqtime/internal/backup"
	"github.com/tomwugdgz/qqtime/internal/bank"
)

// PassphraseHeader carries the backup passphrase so it stays out of URLs
// and access logs.
const PassphraseHeader = "X-Backup-Passphrase"

const maxImportSize = 16 << 20

type ExportHandler struct {
	bank *bank.Bank
}

func NewExportHandler(b *bank.Bank) *ExportHandler {
	return &ExportHandler{bank: b}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	attachment(w, "text/csv; charset=utf-8", backup.CSVFilename(h.bank.Now()))
	if err := backup.WriteCSV(w, h.bank.History(), h.bank.Location()); err != nil {
		slog.Error("write csv export", "error", err)
	}
}

// Backup downloads the full-state backup, encrypted when a passphrase
// header is present.
func (h *ExportHandler) Backup(w http.ResponseWriter, r *http.Request) {
	data, err := backup.Marshal(h.bank.Backup())
	if err != nil {
		writeError(w, err)
		return
	}

	name := backup.Filename(h.bank.Now())
	if pass := r.Header.Get(PassphraseHeader); pass != "" {
		data, err = backup.Encrypt(data, pass)
		if err != nil {
			writeError(w, err)
			return
		}
		attachment(w, "application/octet-stream", name+".enc")
	} else {
		attachment(w, "application/json", name)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import takes the raw backup file as the request body. Without
// ?confirm=true it answers 409 with the resulting balance in the prompt.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "backup file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	imported, err := h.bank.Import(data, r.Header.Get(PassphraseHeader), confirmed(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"balance":      imported.Balance,
		"transactions": len(imported.Transactions),
	})
}
