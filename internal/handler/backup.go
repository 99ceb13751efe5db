package handler

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/tomwugdgz/qqtime/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
}

func NewBackupHandler(m *backup.Manager) *BackupHandler {
	return &BackupHandler{manager: m}
}

type backupListResponse struct {
	Status backup.Status `json:"status"`
	Files  []string      `json:"files"`
}

// List reports the manager status and the scheduled backup files on disk.
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	st := h.manager.Status()
	files := []string{}
	if st.State != backup.StateDisabled {
		names, err := h.manager.List()
		if err != nil {
			writeError(w, err)
			return
		}
		if names != nil {
			files = names
		}
	}
	writeJSON(w, http.StatusOK, backupListResponse{Status: st, Files: files})
}

func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	path, err := h.manager.RunNow()
	if errors.Is(err, backup.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if errors.Is(err, backup.ErrBackupRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": filepath.Base(path)})
}
