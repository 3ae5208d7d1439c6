package handlers

import (
	"net/http"

	"readalong/internal/audio"
)

// UploadHandler handles practice recording uploads.
type UploadHandler struct {
	store   *audio.Store
	maxSize int64
}

// NewUploadHandler creates a new upload handler. maxSize caps the
// accepted request body in bytes.
func NewUploadHandler(store *audio.Store, maxSize int64) *UploadHandler {
	return &UploadHandler{store: store, maxSize: maxSize}
}

// Upload handles POST /api/upload-student-audio. The multipart field
// name is "audioFile"; the response carries the URL the client should
// record against the week.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Upload too large or malformed", "", err)
		return
	}

	file, header, err := r.FormFile("audioFile")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No audio file uploaded", "", err)
		return
	}
	defer file.Close()

	filename, err := h.store.Save(file, header.Filename)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to store audio", "Error storing upload", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": "/uploads/" + filename})
}
