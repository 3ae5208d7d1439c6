package handlers

import (
	"net/http"

	"readalong/internal/service"
)

// BackupHandler exposes dataset export and restore over HTTP.
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export handles GET /api/backup, streaming the snapshot as a
// download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="readalong-backup.json"`)
	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export backup", "Error exporting backup", err)
	}
}

// Import handles POST /api/backup with the snapshot as the request
// body.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import backup", "Error importing backup", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
